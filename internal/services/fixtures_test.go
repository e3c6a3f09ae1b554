package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/diewo77/go-orders/internal/policy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	standard  = auth.Principal{UserID: 1, Email: "clerk@example.com", Level: auth.LevelStandard}
	elevated  = auth.Principal{UserID: 2, Email: "admin@example.com", Level: auth.LevelElevated}
	anonymous = auth.Principal{}
)

func testAuthz() Authorizer { return policy.NewAuthGate(nil, time.Minute) }

func seedClient(t *testing.T, db *gorm.DB, n int) models.Client {
	t.Helper()
	c := models.Client{
		Name:  fmt.Sprintf("Client %d", n),
		Email: fmt.Sprintf("client%d@example.com", n),
		CPF:   fmt.Sprintf("111.222.333-%02d", n),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, desc, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Description:  desc,
		SaleValue:    decimal.RequireFromString(price),
		Section:      "General",
		InitialStock: stock,
		CurrentStock: stock,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return p.CurrentStock
}

func ptr[T any](v T) *T { return &v }
