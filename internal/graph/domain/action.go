package domain

import (
	"time"
)

// Action is an encrypted permission grant attached to a cluster.
//
// Value holds the AES-GCM ciphertext of a JSON payload whose "action" field
// selects the handler. KeyHash is the digest of the key that decrypts it.
type Action struct {
	ID            int64
	ClusterID     int64
	KeyHash       string
	Nonce         string
	Value         []byte
	ActionType    string
	Start         time.Time
	Stop          *time.Time
	ContentAction *ContentAction
}

// IsActive reports whether now lies inside the validity window.
func (a *Action) IsActive(now time.Time) bool {
	if a.Start.After(now) {
		return false
	}
	return a.Stop == nil || !a.Stop.Before(now)
}

// ContentAction narrows an action to a single content and tracks its usage.
type ContentAction struct {
	ID        int64
	ActionID  int64
	ContentID int64
	Group     string
	Used      bool
}
