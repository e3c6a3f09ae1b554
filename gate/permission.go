package gate

import "strings"

// Action describes the kind of operation a caller wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Permission is an allowed action on a resource type, written "resource:action"
// (e.g. "order:create"). Either side may be the wildcard "*".
type Permission string

// Wildcards
const (
	Wildcard      = "*"
	PermissionAll Permission = "*:*"
)

// NewPermission builds a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
// Malformed permissions yield empty strings.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok || res == "" || act == "" {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants the requested permission.
// "*:*" matches everything, "order:*" any order action and "*:view" view on any resource.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionAll || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res == "" || reqRes == "" {
		return false
	}
	return (res == Wildcard || res == reqRes) && (string(act) == Wildcard || act == reqAct)
}
