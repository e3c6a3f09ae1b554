package repository

import (
	"context"
	"slices"

	"github.com/diewo77/go-orders/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository is the catalog: product lookups and stock mutation.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// ProductFilter narrows List. Zero values disable a criterion.
type ProductFilter struct {
	Page
	Section       string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	AvailableOnly bool
}

// FindByID returns the product or ErrNotFound.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindByBarcode returns the product with the given barcode or ErrNotFound.
// An empty code is never looked up.
func (r *ProductRepository) FindByBarcode(ctx context.Context, code string) (*models.Product, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	var p models.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", code).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// LockForUpdate takes row locks on the given products in ascending id order,
// so that concurrent transactions locking overlapping sets cannot deadlock.
// Missing ids are ignored. Must run inside a transaction; SQLite has no row
// locks and serializes writers instead.
func (r *ProductRepository) LockForUpdate(ctx context.Context, ids []uint) error {
	if len(ids) == 0 || r.db.Dialector.Name() == "sqlite" {
		return nil
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var locked []uint
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id").
		Pluck("id", &locked).Error
}

// AdjustStock applies current_stock += delta to p within the caller's
// transaction. The update is guarded so the stored value can never become
// negative: when the guard rejects it, AdjustStock returns a *StockError with
// the stock actually available, or ErrNotFound if the product is gone.
// On success p is refreshed from the database.
func (r *ProductRepository) AdjustStock(ctx context.Context, p *models.Product, delta int) (*models.Product, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND current_stock + ? >= 0", p.ID, delta).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	current, err := r.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, &StockError{ProductID: p.ID, Available: current.CurrentStock, Requested: -delta}
	}
	*p = *current
	return p, nil
}

// Create inserts p.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save writes every field of p.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete removes the product or returns ErrNotFound.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsReferenced reports whether any order item points at the product.
func (r *ProductRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&n).Error
	return n > 0, err
}

// List returns products matching f ordered by id.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if f.Section != "" {
		q = q.Where("LOWER(section) LIKE ?", contains(f.Section))
	}
	if f.MinPrice != nil {
		q = q.Where("sale_value >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("sale_value <= ?", *f.MaxPrice)
	}
	if f.AvailableOnly {
		q = q.Where("current_stock > 0")
	}
	products := make([]models.Product, 0)
	err := f.Page.apply(q.Order("id")).Find(&products).Error
	return products, err
}
