package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/diewo77/go-orders/internal/policy"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

func (in RegisterInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Email("email", in.Email, v)
	validation.MaxLen("email", in.Email, 255, v)
	validation.Required("password", in.Password, v)
	if len(in.Password) > 0 && len(in.Password) < minPasswordLen {
		v.Add("password", "too_short")
	}
	// bcrypt ignores bytes past 72
	validation.MaxLen("password", in.Password, 72, v)
	validation.MaxLen("full_name", in.FullName, 255, v)
	return v
}

// AuthService registers accounts and issues tokens.
type AuthService struct {
	users  *repository.UserRepository
	signer *auth.Signer
	authz  Authorizer
	log    *zap.Logger
	cost   int
}

func NewAuthService(db *gorm.DB, signer *auth.Signer, authz Authorizer, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  repository.NewUserRepository(db),
		signer: signer,
		authz:  authz,
		log:    log,
		cost:   bcrypt.DefaultCost,
	}
}

// Register creates an active, non-superuser account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: in.Email, HashedPassword: string(hash), FullName: in.FullName, IsActive: true}
	if err := duplicate(s.users.Create(ctx, u), ErrEmailTaken); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Uint("user_id", u.ID))
	return u, nil
}

// Login checks credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return auth.TokenPair{}, ErrInactiveUser
	}
	return s.signer.IssuePair(u.ID), nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	uid, err := s.signer.Parse(refreshToken, auth.KindRefresh)
	if err != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.users.FindByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	if !u.IsActive {
		return auth.TokenPair{}, ErrInactiveUser
	}
	return s.signer.IssuePair(u.ID), nil
}

// Me returns the account of the calling principal.
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	if err := authorize(s.authz, p, gate.ActionView, policy.ResourceUser); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}
