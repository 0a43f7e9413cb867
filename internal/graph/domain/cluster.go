// Package domain defines the secretgraph entities: clusters, contents with their
// tags and references, and the encrypted actions granting access to them.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cluster groups contents and the actions that govern access to them.
//
// A cluster is expired once MarkForDestruction has passed; it is only removed
// when it no longer holds any content.
//
// PublicInfo is an opaque document published with public clusters. The server
// only inspects it for published secrets, see PublishedSecrets.
type Cluster struct {
	ID                 int64
	FlexID             uuid.UUID
	Name               string
	Description        string
	Public             bool
	PublicInfo         []byte
	MarkForDestruction *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PublishedSecrets collects the secret part of every "<prefix>:<secret>" term
// of PublicInfo. Terms are separated by whitespace, quotes, angle brackets
// and turtle punctuation; terms with an empty prefix or secret are skipped.
func (c *Cluster) PublishedSecrets() map[string]struct{} {
	secrets := make(map[string]struct{})
	if len(c.PublicInfo) == 0 {
		return secrets
	}

	terms := strings.FieldsFunc(string(c.PublicInfo), func(r rune) bool {
		switch r {
		case '"', '\'', '<', '>', ';', ',', '(', ')', '[', ']':
			return true
		}
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	for _, term := range terms {
		prefix, secret, ok := strings.Cut(term, ":")
		if !ok || prefix == "" || secret == "" {
			continue
		}
		secrets[strings.TrimSuffix(secret, ".")] = struct{}{}
	}
	return secrets
}
