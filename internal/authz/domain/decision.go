package domain

import (
	"strings"

	"github.com/devkral/secretgraph/internal/predicate"
)

// DecisionKind is the outcome of evaluating one action.
type DecisionKind int

// Decision kinds.
const (
	DecisionNotApplicable DecisionKind = iota
	DecisionDeny
	DecisionGrant
)

// Form carries the constraints a granting action places on mutations.
//
// AllowedTags nil means every tag may be set.
type Form struct {
	RequiredKeys []string
	AllowedTags  []string
}

// AllowsTag reports whether tag may be set under this form. An allowed entry
// matches the tag itself, or every value of it when the tag has a value.
func (f *Form) AllowsTag(tag string) bool {
	if f == nil || f.AllowedTags == nil {
		return true
	}
	name, _, _ := strings.Cut(tag, "=")
	for _, allowed := range f.AllowedTags {
		if allowed == tag || allowed == name || allowed == name+"=" {
			return true
		}
		if strings.HasSuffix(allowed, "=") && strings.HasPrefix(tag, allowed) {
			return true
		}
	}
	return false
}

// Decision is what a handler returns for one action.
type Decision struct {
	Kind        DecisionKind
	AccessLevel int
	Filter      predicate.Predicate
	Form        *Form
}

// NotApplicable skips the action.
func NotApplicable() Decision {
	return Decision{Kind: DecisionNotApplicable}
}

// Deny aborts the whole resolution.
func Deny() Decision {
	return Decision{Kind: DecisionDeny}
}

// Grant allows rows matching filter at accessLevel. A nil filter allows every row.
func Grant(accessLevel int, filter predicate.Predicate, form *Form) Decision {
	if filter == nil {
		filter = predicate.True()
	}
	return Decision{Kind: DecisionGrant, AccessLevel: accessLevel, Filter: filter, Form: form}
}
