package service

import (
	"context"
	"slices"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// tagFilter holds the optional content filters of view-like payloads.
type tagFilter struct {
	IncludeTags []string `json:"includeTags"`
	ExcludeTags []string `json:"excludeTags"`
}

// formFields holds the optional form of mutating payloads.
type formFields struct {
	RequiredKeys []string `json:"requiredKeys"`
	AllowedTags  []string `json:"allowedTags"`
}

func decodeTagFilter(payload *authzDomain.Payload) (tagFilter, error) {
	var f tagFilter
	if err := payload.Decode("includeTags", &f.IncludeTags); err != nil {
		return f, err
	}
	if err := payload.Decode("excludeTags", &f.ExcludeTags); err != nil {
		return f, err
	}
	return f, nil
}

func decodeForm(payload *authzDomain.Payload) (*authzDomain.Form, error) {
	var f formFields
	if err := payload.Decode("requiredKeys", &f.RequiredKeys); err != nil {
		return nil, err
	}
	if err := payload.Decode("allowedTags", &f.AllowedTags); err != nil {
		return nil, err
	}
	form := &authzDomain.Form{RequiredKeys: f.RequiredKeys, AllowedTags: f.AllowedTags}
	if form.RequiredKeys == nil {
		form.RequiredKeys = []string{}
	}
	return form, nil
}

// contentFilter builds the row filter of an action on the contents table.
// Content actions only reach their own content.
func contentFilter(action *graphDomain.Action, tags tagFilter) predicate.Predicate {
	terms := []predicate.Predicate{}
	if action.ContentAction != nil {
		terms = append(terms, predicate.Eq(predicate.FieldID, action.ContentAction.ContentID))
	}
	if len(tags.IncludeTags) > 0 {
		include := make([]predicate.Predicate, 0, len(tags.IncludeTags))
		for _, tag := range tags.IncludeTags {
			include = append(include, predicate.HasTagPrefix(tag))
		}
		terms = append(terms, predicate.AnyOf(include...))
	}
	for _, tag := range tags.ExcludeTags {
		terms = append(terms, predicate.Negate(predicate.HasTagPrefix(tag)))
	}
	return predicate.AllOf(terms...)
}

// filterFor returns the filter for kind, or false when the action cannot
// reach kind at all.
func filterFor(kind graphDomain.EntityKind, action *graphDomain.Action, tags tagFilter) (predicate.Predicate, bool) {
	switch kind {
	case graphDomain.KindContent:
		return contentFilter(action, tags), true
	case graphDomain.KindCluster:
		// a content action does not expose its cluster
		if action.ContentAction != nil {
			return nil, false
		}
		return predicate.True(), true
	}
	return nil, false
}

func evaluateView(
	_ context.Context,
	kind graphDomain.EntityKind,
	payload *authzDomain.Payload,
	scope string,
	action *graphDomain.Action,
	_ int,
) (authzDomain.Decision, error) {
	if scope != authzDomain.ScopeView {
		return authzDomain.NotApplicable(), nil
	}
	tags, err := decodeTagFilter(payload)
	if err != nil {
		return authzDomain.NotApplicable(), err
	}
	filter, ok := filterFor(kind, action, tags)
	if !ok {
		return authzDomain.NotApplicable(), nil
	}
	return authzDomain.Grant(authzDomain.AccessLevelNormal, filter, nil), nil
}

func evaluateUpdate(
	_ context.Context,
	kind graphDomain.EntityKind,
	payload *authzDomain.Payload,
	scope string,
	action *graphDomain.Action,
	_ int,
) (authzDomain.Decision, error) {
	if !slices.Contains([]string{authzDomain.ScopeView, authzDomain.ScopeUpdate, authzDomain.ScopePush}, scope) {
		return authzDomain.NotApplicable(), nil
	}
	tags, err := decodeTagFilter(payload)
	if err != nil {
		return authzDomain.NotApplicable(), err
	}
	form, err := decodeForm(payload)
	if err != nil {
		return authzDomain.NotApplicable(), err
	}
	filter, ok := filterFor(kind, action, tags)
	if !ok {
		return authzDomain.NotApplicable(), nil
	}
	return authzDomain.Grant(authzDomain.AccessLevelNormal, filter, form), nil
}

func evaluateDelete(
	_ context.Context,
	kind graphDomain.EntityKind,
	payload *authzDomain.Payload,
	scope string,
	action *graphDomain.Action,
	_ int,
) (authzDomain.Decision, error) {
	if scope != authzDomain.ScopeView && scope != authzDomain.ScopeDelete {
		return authzDomain.NotApplicable(), nil
	}
	tags, err := decodeTagFilter(payload)
	if err != nil {
		return authzDomain.NotApplicable(), err
	}
	filter, ok := filterFor(kind, action, tags)
	if !ok {
		return authzDomain.NotApplicable(), nil
	}
	return authzDomain.Grant(authzDomain.AccessLevelNormal, filter, nil), nil
}

// evaluateManage grants owner access to everything of the cluster, including
// its actions. Content actions never carry manage.
func evaluateManage(
	_ context.Context,
	kind graphDomain.EntityKind,
	payload *authzDomain.Payload,
	_ string,
	action *graphDomain.Action,
	_ int,
) (authzDomain.Decision, error) {
	if action.ContentAction != nil {
		return authzDomain.NotApplicable(), nil
	}
	var exclude []int64
	if err := payload.Decode("exclude", &exclude); err != nil {
		return authzDomain.NotApplicable(), err
	}

	filter := predicate.True()
	if kind == graphDomain.KindContent && len(exclude) > 0 {
		filter = predicate.Negate(predicate.In(predicate.FieldID, exclude...))
	}
	return authzDomain.Grant(authzDomain.AccessLevelOwner, filter, &authzDomain.Form{RequiredKeys: []string{}}), nil
}
