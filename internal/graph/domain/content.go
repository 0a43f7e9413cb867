package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Content is an encrypted value stored in a cluster.
//
// The encrypted bytes live in the value store under ValueRef; the row keeps the
// nonce, the optional content hash used for deduplication and the tags and
// references that describe it.
type Content struct {
	ID                 int64
	FlexID             uuid.UUID
	ClusterID          int64
	Nonce              string
	ValueRef           string
	ContentHash        *string
	MarkForDestruction *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Tags and References are only populated by loaders that ask for them.
	Tags       []string
	References []*ContentReference
}

// TagValues returns the values of all tags named name, in stored order.
func (c *Content) TagValues(name string) []string {
	prefix := name + "="
	var values []string
	for _, tag := range c.Tags {
		if strings.HasPrefix(tag, prefix) {
			values = append(values, tag[len(prefix):])
		}
	}
	return values
}

// HasTag reports whether the content carries exactly tag.
func (c *Content) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Type returns the value of the type tag, or "" when absent.
func (c *Content) Type() string {
	if values := c.TagValues(TagType); len(values) > 0 {
		return values[0]
	}
	return ""
}

// State returns the value of the state tag, or StateDefault when absent.
func (c *Content) State() string {
	if values := c.TagValues(TagState); len(values) > 0 {
		return values[0]
	}
	return StateDefault
}

// IsKey reports whether the content is a public or private key.
func (c *Content) IsKey() bool {
	return IsKeyType(c.Type())
}

// ContentReference is a typed edge from Source to Target.
//
// References with a non-empty Group are unique per (source, group, target).
type ContentReference struct {
	ID              int64
	SourceID        int64
	TargetID        int64
	Group           string
	Extra           string
	DeleteRecursive DeleteRecursive

	// TargetFlexID and TargetContentHash describe the target when loaded with it.
	TargetFlexID      uuid.UUID
	TargetContentHash *string
}
