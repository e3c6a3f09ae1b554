package repository

import (
	"fmt"
	"testing"

	"github.com/diewo77/go-orders/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func seedClient(t *testing.T, db *gorm.DB, n int) models.Client {
	t.Helper()
	c := models.Client{
		Name:  fmt.Sprintf("Client %d", n),
		Email: fmt.Sprintf("client%d@example.com", n),
		CPF:   fmt.Sprintf("000.000.000-%02d", n),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, desc, price, section string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Description:  desc,
		SaleValue:    decimal.RequireFromString(price),
		Section:      section,
		InitialStock: stock,
		CurrentStock: stock,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return p
}

func seedOrder(t *testing.T, db *gorm.DB, client models.Client, status string, items ...models.OrderItem) models.Order {
	t.Helper()
	o := models.Order{ClientID: client.ID, Status: status, Items: items}
	o.TotalValue = o.ComputeTotal()
	if err := NewOrderRepository(db).Create(t.Context(), &o); err != nil {
		t.Fatalf("order: %v", err)
	}
	return o
}
