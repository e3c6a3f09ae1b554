package repository

import (
	"errors"
	"testing"

	"github.com/diewo77/go-orders/internal/db/dbtest"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProductFindByIDAndBarcode(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewProductRepository(db)
	p := seedProduct(t, db, "Dress", "10.00", "women", 5)
	code := "789000"
	p.Barcode = &code
	require.NoError(t, repo.Save(t.Context(), &p))

	got, err := repo.FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dress", got.Description)
	assert.True(t, got.SaleValue.Equal(decimal.RequireFromString("10")))

	got, err = repo.FindByBarcode(t.Context(), "789000")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.FindByID(t.Context(), 99999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByBarcode(t.Context(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByBarcode(t.Context(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductAdjustStock(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewProductRepository(db)
	p := seedProduct(t, db, "Shirt", "25.50", "men", 5)

	got, err := repo.AdjustStock(t.Context(), &p, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStock)
	assert.Equal(t, 2, p.CurrentStock)

	_, err = repo.AdjustStock(t.Context(), &p, -3)
	var se *StockError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 3, se.Requested)

	reloaded, err := repo.FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.CurrentStock, "rejected adjustment must not write")

	_, err = repo.AdjustStock(t.Context(), &p, -2)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentStock)

	_, err = repo.AdjustStock(t.Context(), &p, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, p.CurrentStock)
}

func TestProductAdjustStockVanished(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewProductRepository(db)
	ghost := &models.Product{ID: 4242}
	_, err := repo.AdjustStock(t.Context(), ghost, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductAdjustStockRollsBackWithTx(t *testing.T) {
	db := dbtest.Open(t)
	p := seedProduct(t, db, "Hat", "5.00", "", 3)
	boom := errors.New("boom")

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := NewProductRepository(db).WithTx(tx).AdjustStock(t.Context(), &p, -3); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := NewProductRepository(db).FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStock)
}

func TestProductLockForUpdateSQLiteNoop(t *testing.T) {
	db := dbtest.Open(t)
	p := seedProduct(t, db, "Hat", "5.00", "", 3)
	err := db.Transaction(func(tx *gorm.DB) error {
		return NewProductRepository(db).WithTx(tx).LockForUpdate(t.Context(), []uint{p.ID, p.ID, 999})
	})
	assert.NoError(t, err)
}

func TestProductList(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewProductRepository(db)
	seedProduct(t, db, "Dress", "120.00", "Women", 2)
	seedProduct(t, db, "Skirt", "80.00", "women", 0)
	seedProduct(t, db, "Tie", "30.00", "Men", 9)

	minPrice := decimal.RequireFromString("50")
	maxPrice := decimal.RequireFromString("100")

	cases := []struct {
		name string
		f    ProductFilter
		want []string
	}{
		{"all", ProductFilter{}, []string{"Dress", "Skirt", "Tie"}},
		{"section case-insensitive", ProductFilter{Section: "WOM"}, []string{"Dress", "Skirt"}},
		{"min price", ProductFilter{MinPrice: &minPrice}, []string{"Dress", "Skirt"}},
		{"price range", ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, []string{"Skirt"}},
		{"available", ProductFilter{AvailableOnly: true}, []string{"Dress", "Tie"}},
		{"paged", ProductFilter{Page: Page{Skip: 1, Limit: 1}}, []string{"Skirt"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(t.Context(), tc.f)
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Description)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestProductDeleteAndReferences(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewProductRepository(db)
	c := seedClient(t, db, 1)
	used := seedProduct(t, db, "Used", "1.00", "", 5)
	free := seedProduct(t, db, "Free", "1.00", "", 5)
	seedOrder(t, db, c, "pending", models.OrderItem{ProductID: used.ID, Quantity: 1, UnitPrice: used.SaleValue})

	ref, err := repo.IsReferenced(t.Context(), used.ID)
	require.NoError(t, err)
	assert.True(t, ref)
	ref, err = repo.IsReferenced(t.Context(), free.ID)
	require.NoError(t, err)
	assert.False(t, ref)

	require.NoError(t, repo.Delete(t.Context(), free.ID))
	assert.ErrorIs(t, repo.Delete(t.Context(), free.ID), ErrNotFound)
}
