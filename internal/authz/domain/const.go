// Package domain defines the authorization model: credential tokens, decrypted
// action payloads, handler decisions and the permission envelope a resolution
// produces.
package domain

// Scopes requested from the resolver.
const (
	ScopeView   = "view"
	ScopeUpdate = "update"
	ScopeDelete = "delete"
	ScopeManage = "manage"
	ScopePush   = "push"
)

// Access levels. A strictly higher level replaces the filters collected so far.
const (
	AccessLevelDefault = 0
	AccessLevelNormal  = 1
	AccessLevelOwner   = 2
	AccessLevelSpecial = 3
)

// Built-in action kinds.
const (
	ActionView   = "view"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)
