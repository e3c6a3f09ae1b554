package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPending is the only status assigned by the system.
// Other statuses are free-form labels set by callers.
const OrderStatusPending = "pending"

// Order is a client's purchase. Orders and their items are created together
// and the item list never changes afterwards; only Status is updatable.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`

	Status     string          `gorm:"size:50;not null;default:'pending';index" json:"status"`
	TotalValue decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_value"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// ComputeTotal sums quantity * unit price over the items.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total())
	}
	return total
}

// OrderItem is one line of an order. UnitPrice is the product's sale value
// at the time the order was created.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderID   uint     `gorm:"index;not null" json:"order_id"`
	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`

	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// Total returns quantity * unit price.
func (i OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{&User{}, &Client{}, &Product{}, &Order{}, &OrderItem{}}
}
