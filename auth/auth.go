// Package auth issues and verifies bearer tokens and carries the resolved
// principal through request contexts.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/diewo77/go-orders/httpx"
)

type ctxKey string

const principalCtxKey = ctxKey("principal")

// Level is a principal's capability level. The zero value carries no capabilities.
type Level string

const (
	LevelStandard Level = "standard"
	LevelElevated Level = "elevated"
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Level  Level  `json:"level"`
}

// Authenticated reports whether p identifies a resolved caller.
func (p Principal) Authenticated() bool { return p.UserID != 0 && p.Level != "" }

// Elevated reports whether p holds the elevated capability level.
func (p Principal) Elevated() bool { return p.Authenticated() && p.Level == LevelElevated }

// PrincipalResolver turns a verified user id into a principal. Implementations
// return an error for unknown or disabled users.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID uint) (Principal, error)
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext extracts the principal set by Middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok || !p.Authenticated() {
		return Principal{}, false
	}
	return p, true
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware attaches the principal of a valid access token to the request
// context. Requests without a usable token pass through anonymously; use
// RequireAuth to reject them.
func Middleware(signer *Signer, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := BearerToken(r); token != "" {
				if uid, err := signer.Parse(token, KindAccess); err == nil {
					if p, err := resolver.Resolve(r.Context(), uid); err == nil && p.Authenticated() {
						r = r.WithContext(WithPrincipal(r.Context(), p))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns 401 JSON when no principal is attached.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireElevated returns 401 for anonymous callers and 403 for standard principals.
func RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !p.Elevated() {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
}
