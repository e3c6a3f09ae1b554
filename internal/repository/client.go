package repository

import (
	"context"

	"github.com/diewo77/go-orders/internal/models"
	"gorm.io/gorm"
)

// ClientRepository gives access to client records.
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ClientRepository) WithTx(tx *gorm.DB) *ClientRepository {
	return &ClientRepository{db: tx}
}

// ClientFilter narrows List by case-insensitive substrings.
type ClientFilter struct {
	Page
	Name  string
	Email string
}

// FindByID returns the client or ErrNotFound.
func (r *ClientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	return r.findBy(ctx, "email", email)
}

func (r *ClientRepository) FindByCPF(ctx context.Context, cpf string) (*models.Client, error) {
	return r.findBy(ctx, "cpf", cpf)
}

func (r *ClientRepository) findBy(ctx context.Context, column, value string) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClientRepository) Save(ctx context.Context, c *models.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete removes the client or returns ErrNotFound.
func (r *ClientRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Client{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasOrders reports whether any order references the client.
func (r *ClientRepository) HasOrders(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("client_id = ?", id).Count(&n).Error
	return n > 0, err
}

// List returns clients matching f ordered by id.
func (r *ClientRepository) List(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	q := r.db.WithContext(ctx).Model(&models.Client{})
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", contains(f.Name))
	}
	if f.Email != "" {
		q = q.Where("LOWER(email) LIKE ?", contains(f.Email))
	}
	clients := make([]models.Client, 0)
	err := f.Page.apply(q.Order("id")).Find(&clients).Error
	return clients, err
}
