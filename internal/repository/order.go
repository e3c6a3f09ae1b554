package repository

import (
	"context"
	"time"

	"github.com/diewo77/go-orders/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository persists orders together with their items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// OrderFilter narrows List. Zero values disable a criterion.
type OrderFilter struct {
	Page
	From     *time.Time // created_at >= From
	To       *time.Time // created_at <= To
	Status   string     // case-insensitive substring
	ClientID uint
	OrderID  uint
	Section  string // case-insensitive substring of any item's product section
}

// Create inserts o and then its items. Associations are not upserted.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(o).Error; err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return nil
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	return db.Omit(clause.Associations).Create(&o.Items).Error
}

func (r *OrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product")
}

// FindByID returns the order with its client, items and products, or ErrNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.preloaded(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// UpdateStatus overwrites the status column only.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{ID: id}).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the order's items and then the order.
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns preloaded orders matching f ordered by id.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.preloaded(ctx).Model(&models.Order{})
	if f.From != nil {
		q = q.Where("orders.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("orders.created_at <= ?", *f.To)
	}
	if f.Status != "" {
		q = q.Where("LOWER(orders.status) LIKE ?", contains(f.Status))
	}
	if f.ClientID != 0 {
		q = q.Where("orders.client_id = ?", f.ClientID)
	}
	if f.OrderID != 0 {
		q = q.Where("orders.id = ?", f.OrderID)
	}
	if f.Section != "" {
		withSection := r.db.WithContext(ctx).
			Table("order_items").
			Select("order_items.order_id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("LOWER(products.section) LIKE ?", contains(f.Section))
		q = q.Where("orders.id IN (?)", withSection)
	}
	orders := make([]models.Order, 0)
	err := f.Page.apply(q.Order("orders.id")).Find(&orders).Error
	return orders, err
}
