package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/diewo77/go-orders/internal/repository"
)

var (
	ErrUnknownPrincipal  = errors.New("unknown principal")
	ErrInactivePrincipal = errors.New("inactive principal")
)

// DBPrincipalResolver loads principals from the users table.
type DBPrincipalResolver struct {
	Users *repository.UserRepository
}

func NewDBPrincipalResolver(users *repository.UserRepository) *DBPrincipalResolver {
	return &DBPrincipalResolver{Users: users}
}

// Resolve returns the principal of an active user. Superusers are elevated.
func (r *DBPrincipalResolver) Resolve(ctx context.Context, userID uint) (auth.Principal, error) {
	u, err := r.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Principal{}, ErrUnknownPrincipal
	}
	if err != nil {
		return auth.Principal{}, fmt.Errorf("resolve principal %d: %w", userID, err)
	}
	if !u.IsActive {
		return auth.Principal{}, ErrInactivePrincipal
	}
	return PrincipalFor(u), nil
}

// PrincipalFor maps a user to its principal regardless of activity.
func PrincipalFor(u *models.User) auth.Principal {
	level := auth.LevelStandard
	if u.IsSuperuser {
		level = auth.LevelElevated
	}
	return auth.Principal{UserID: u.ID, Email: u.Email, Level: level}
}
