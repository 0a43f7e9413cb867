// Package domain holds the value types produced by the tag and reference
// transformations applied to content metadata.
package domain

import (
	"sort"

	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// TagMap maps tag names to their value sets. A name mapped to nil is a bare flag.
type TagMap map[string]map[string]struct{}

// Add records name=value (isTag) or the flag name. Using one name both ways fails.
func (m TagMap) Add(name, value string, isTag bool) error {
	values, exists := m[name]
	if isTag {
		if exists && values == nil {
			return graphDomain.ErrTagFlagCollision
		}
		if values == nil {
			values = make(map[string]struct{})
			m[name] = values
		}
		values[value] = struct{}{}
		return nil
	}
	if exists && values != nil {
		return graphDomain.ErrTagFlagCollision
	}
	m[name] = nil
	return nil
}

// Has reports whether name is present as tag or flag.
func (m TagMap) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// IsFlag reports whether name is present as a bare flag.
func (m TagMap) IsFlag(name string) bool {
	values, ok := m[name]
	return ok && values == nil
}

// Values returns the sorted values of name.
func (m TagMap) Values(name string) []string {
	values := make([]string, 0, len(m[name]))
	for v := range m[name] {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Single returns the only value of a unique tag such as state or type.
func (m TagMap) Single(name string) string {
	for v := range m[name] {
		return v
	}
	return ""
}

// Strings renders the map as sorted tag strings.
func (m TagMap) Strings() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var tags []string
	for _, name := range names {
		if m[name] == nil {
			tags = append(tags, name)
			continue
		}
		for _, v := range m.Values(name) {
			tags = append(tags, name+"="+v)
		}
	}
	return tags
}

// HashSet is a set of digests.
type HashSet map[string]struct{}

// NewHashSet builds a set from digests.
func NewHashSet(digests ...string) HashSet {
	s := make(HashSet, len(digests))
	for _, d := range digests {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s HashSet) Contains(digest string) bool {
	_, ok := s[digest]
	return ok
}

// ContainsAll reports whether every digest is a member.
func (s HashSet) ContainsAll(digests []string) bool {
	for _, d := range digests {
		if !s.Contains(d) {
			return false
		}
	}
	return true
}

// Intersects reports whether any digest is a member.
func (s HashSet) Intersects(digests []string) bool {
	for _, d := range digests {
		if s.Contains(d) {
			return true
		}
	}
	return false
}

// Sorted returns the members in sorted order.
func (s HashSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ErrStateFlag and friends reject reserved names used as bare flags.
var (
	ErrStateFlag   = apperrors.Wrap(apperrors.ErrInvalidInput, "state should be tag not flag")
	ErrTypeFlag    = apperrors.Wrap(apperrors.ErrInvalidInput, "type should be tag not flag")
	ErrKeyHashFlag = apperrors.Wrap(apperrors.ErrInvalidInput, "key_hash should be tag not flag")
)
