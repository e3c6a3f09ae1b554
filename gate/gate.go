// Package gate provides capability-based authorization for API operations.
// A Gate maps a subject's capability level to a Profile and checks
// "resource:action" permissions against it. The package has no dependency on
// domain models; callers choose the level type.
//
// Typical use:
//
//	g := gate.New[auth.Level]()
//	g.Grant(auth.LevelStandard, gate.NewStaticProfile("standard", "order:*"))
//	err := g.Authorize(p.Level, gate.ActionDelete, "order")
package gate

import "sync"

// Gate is the central authorization checkpoint.
// L is the capability level type; its zero value means "no capabilities".
type Gate[L comparable] struct {
	mu       sync.RWMutex
	profiles map[L]Profile
}

// New creates an empty Gate. Levels without a granted profile are denied everything.
func New[L comparable]() *Gate[L] {
	return &Gate[L]{profiles: make(map[L]Profile)}
}

// Grant assigns the profile used for a capability level, replacing any previous one.
func (g *Gate[L]) Grant(level L, p Profile) {
	g.mu.Lock()
	g.profiles[level] = p
	g.mu.Unlock()
}

// Profile returns the profile granted to level, if any.
func (g *Gate[L]) Profile(level L) (Profile, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.profiles[level]
	return p, ok
}

// Authorize returns nil when level may perform action on resourceType.
// Returns ErrUnauthenticated for the zero level, ErrNoProfile when the level
// was never granted a profile, and ErrForbidden when the permission is missing.
func (g *Gate[L]) Authorize(level L, action Action, resourceType string) error {
	var zero L
	if level == zero {
		return ErrUnauthenticated
	}
	p, ok := g.Profile(level)
	if !ok {
		return ErrNoProfile
	}
	if !p.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[L]) Can(level L, action Action, resourceType string) bool {
	return g.Authorize(level, action, resourceType) == nil
}
