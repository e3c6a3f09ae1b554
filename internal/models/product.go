package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry.
// CurrentStock never goes below zero; InitialStock is set once at creation.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Description string          `gorm:"size:500;not null" json:"description"`
	SaleValue   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sale_value"`
	// Barcode is nil when the product has none; several products may lack one.
	Barcode *string `gorm:"size:100;uniqueIndex" json:"barcode,omitempty"`
	Section string  `gorm:"size:100;index" json:"section,omitempty"`

	InitialStock int `gorm:"not null;default:0" json:"initial_stock"`
	CurrentStock int `gorm:"not null;default:0;check:current_stock >= 0" json:"current_stock"`

	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	ImageURLs  []string   `gorm:"column:image_urls;type:text;serializer:json" json:"image_urls"`
}

// InStock reports whether at least qty units are available.
func (p *Product) InStock(qty int) bool {
	return qty >= 0 && p.CurrentStock >= qty
}
