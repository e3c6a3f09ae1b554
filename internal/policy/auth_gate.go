// Package policy wires the capability gate to the application's principals.
package policy

import (
	"context"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
)

// Resource types guarded by the gate.
const (
	ResourceOrder   = "order"
	ResourceClient  = "client"
	ResourceProduct = "product"
	ResourceUser    = "user"
)

// StandardProfile is granted to every active user: reading the catalog and
// clients, maintaining clients, and creating, reading and updating orders.
var StandardProfile = gate.NewStaticProfile("standard",
	gate.NewPermission(ResourceOrder, gate.ActionView),
	gate.NewPermission(ResourceOrder, gate.ActionList),
	gate.NewPermission(ResourceOrder, gate.ActionCreate),
	gate.NewPermission(ResourceOrder, gate.ActionUpdate),
	gate.NewPermission(ResourceClient, gate.ActionView),
	gate.NewPermission(ResourceClient, gate.ActionList),
	gate.NewPermission(ResourceClient, gate.ActionCreate),
	gate.NewPermission(ResourceClient, gate.ActionUpdate),
	gate.NewPermission(ResourceProduct, gate.ActionView),
	gate.NewPermission(ResourceProduct, gate.ActionList),
	gate.NewPermission(ResourceUser, gate.ActionView),
)

// ElevatedProfile is granted to superusers.
var ElevatedProfile = gate.NewStaticProfile("elevated", gate.PermissionAll)

// NewGate returns a gate with the two capability levels configured.
func NewGate() *gate.Gate[auth.Level] {
	g := gate.New[auth.Level]()
	g.Grant(auth.LevelStandard, StandardProfile)
	g.Grant(auth.LevelElevated, ElevatedProfile)
	return g
}

// AuthGate is the central authorization point: it resolves principals for the
// auth middleware (with caching) and answers capability checks for services.
type AuthGate struct {
	Gate       *gate.Gate[auth.Level]
	Principals *gate.CachedResolver[uint, auth.Principal]
}

// NewAuthGate wraps inner with an in-process cache of cacheTTL.
// inner is typically a DBPrincipalResolver, optionally behind a Redis cache.
func NewAuthGate(inner gate.Resolver[uint, auth.Principal], cacheTTL time.Duration) *AuthGate {
	return &AuthGate{
		Gate:       NewGate(),
		Principals: gate.NewCachedResolver(inner, cacheTTL),
	}
}

// Resolve implements auth.PrincipalResolver.
func (ag *AuthGate) Resolve(ctx context.Context, userID uint) (auth.Principal, error) {
	return ag.Principals.Resolve(ctx, userID)
}

// Authorize returns nil when p may perform action on resourceType,
// gate.ErrUnauthenticated for anonymous callers and gate.ErrForbidden otherwise.
func (ag *AuthGate) Authorize(p auth.Principal, action gate.Action, resourceType string) error {
	if !p.Authenticated() {
		return gate.ErrUnauthenticated
	}
	return ag.Gate.Authorize(p.Level, action, resourceType)
}
