package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/diewo77/go-orders/internal/policy"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/validation"
	"gorm.io/gorm"
)

// ClientInput is the body of a client creation request.
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	CPF     string `json:"cpf"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (in *ClientInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.CPF = strings.TrimSpace(in.CPF)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
}

func (in ClientInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.Email("email", in.Email, v)
	validation.Required("cpf", in.CPF, v)
	validation.MaxLen("cpf", in.CPF, 14, v)
	validation.MaxLen("phone", in.Phone, 50, v)
	validation.MaxLen("address", in.Address, 500, v)
	return v
}

// ClientPatch is a partial update; nil fields are left unchanged.
type ClientPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	CPF     *string `json:"cpf,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// apply merges the patch into a copy of c and validates the result.
func (p ClientPatch) apply(c models.Client) (ClientInput, validation.Violations) {
	in := ClientInput{Name: c.Name, Email: c.Email, CPF: c.CPF, Phone: c.Phone, Address: c.Address}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&in.Name, p.Name)
	set(&in.Email, p.Email)
	set(&in.CPF, p.CPF)
	set(&in.Phone, p.Phone)
	set(&in.Address, p.Address)
	in.normalize()
	return in, in.Validate()
}

// ClientService manages clients.
type ClientService struct {
	db      *gorm.DB
	clients *repository.ClientRepository
	authz   Authorizer
}

func NewClientService(db *gorm.DB, authz Authorizer) *ClientService {
	return &ClientService{db: db, clients: repository.NewClientRepository(db), authz: authz}
}

// Create registers a client with a unique email and CPF.
func (s *ClientService) Create(ctx context.Context, p auth.Principal, in ClientInput) (*models.Client, error) {
	if err := authorize(s.authz, p, gate.ActionCreate, policy.ResourceClient); err != nil {
		return nil, err
	}
	in.normalize()
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	c := &models.Client{Name: in.Name, Email: in.Email, CPF: in.CPF, Phone: in.Phone, Address: in.Address}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clients := s.clients.WithTx(tx)
		if err := checkClientUnique(ctx, clients, 0, in.Email, in.CPF); err != nil {
			return err
		}
		return duplicate(clients.Create(ctx, c), ErrEmailTaken)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one client.
func (s *ClientService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Client, error) {
	if err := authorize(s.authz, p, gate.ActionView, policy.ResourceClient); err != nil {
		return nil, err
	}
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, clientNotFound(id, err)
	}
	return c, nil
}

// List returns clients matching f.
func (s *ClientService) List(ctx context.Context, p auth.Principal, f repository.ClientFilter) ([]models.Client, error) {
	if err := authorize(s.authz, p, gate.ActionList, policy.ResourceClient); err != nil {
		return nil, err
	}
	return s.clients.List(ctx, f)
}

// Update applies a partial update. Once a client has orders only its contact
// fields may change; email and CPF stay fixed.
func (s *ClientService) Update(ctx context.Context, p auth.Principal, id uint, patch ClientPatch) (*models.Client, error) {
	if err := authorize(s.authz, p, gate.ActionUpdate, policy.ResourceClient); err != nil {
		return nil, err
	}
	var updated *models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clients := s.clients.WithTx(tx)
		c, err := clients.FindByID(ctx, id)
		if err != nil {
			return clientNotFound(id, err)
		}
		in, v := patch.apply(*c)
		if err := invalid(v); err != nil {
			return err
		}
		if in.Email != c.Email || in.CPF != c.CPF {
			referenced, err := clients.HasOrders(ctx, id)
			if err != nil {
				return err
			}
			if referenced {
				return ErrClientReferenced
			}
			if err := checkClientUnique(ctx, clients, id, in.Email, in.CPF); err != nil {
				return err
			}
		}
		c.Name, c.Email, c.CPF, c.Phone, c.Address = in.Name, in.Email, in.CPF, in.Phone, in.Address
		if err := duplicate(clients.Save(ctx, c), ErrEmailTaken); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a client that has no orders.
func (s *ClientService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	if err := authorize(s.authz, p, gate.ActionDelete, policy.ResourceClient); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clients := s.clients.WithTx(tx)
		referenced, err := clients.HasOrders(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrClientReferenced
		}
		return clientNotFound(id, clients.Delete(ctx, id))
	})
}

// checkClientUnique rejects an email or CPF used by another client than self.
func checkClientUnique(ctx context.Context, clients *repository.ClientRepository, self uint, email, cpf string) error {
	if other, err := clients.FindByEmail(ctx, email); err == nil && other.ID != self {
		return ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if other, err := clients.FindByCPF(ctx, cpf); err == nil && other.ID != self {
		return ErrCPFTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func clientNotFound(id uint, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &ClientNotFoundError{ClientID: id}
	}
	return err
}

// duplicate maps a unique-index violation that slipped past the pre-check
// (a concurrent insert) to conflict.
func duplicate(err, conflict error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w (concurrent write)", conflict)
	}
	return err
}
