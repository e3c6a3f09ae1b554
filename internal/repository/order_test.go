package repository

import (
	"testing"
	"time"

	"github.com/diewo77/go-orders/internal/db/dbtest"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCreateFindUpdateDelete(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewOrderRepository(db)
	c := seedClient(t, db, 1)
	p := seedProduct(t, db, "Bag", "12.34", "acc", 10)

	o := seedOrder(t, db, c, "pending",
		models.OrderItem{ProductID: p.ID, Quantity: 2, UnitPrice: p.SaleValue},
		models.OrderItem{ProductID: p.ID, Quantity: 1, UnitPrice: p.SaleValue},
	)

	got, err := repo.FindByID(t.Context(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Client)
	assert.Equal(t, c.ID, got.Client.ID)
	require.Len(t, got.Items, 2)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Bag", got.Items[0].Product.Description)
	assert.True(t, got.TotalValue.Equal(decimal.RequireFromString("37.02")))

	require.NoError(t, repo.UpdateStatus(t.Context(), o.ID, "shipped"))
	got, err = repo.FindByID(t.Context(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "shipped", got.Status)
	assert.Len(t, got.Items, 2)

	assert.ErrorIs(t, repo.UpdateStatus(t.Context(), 9999, "x"), ErrNotFound)

	require.NoError(t, repo.Delete(t.Context(), o.ID))
	_, err = repo.FindByID(t.Context(), o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var items int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", o.ID).Count(&items)
	assert.Zero(t, items)
	assert.ErrorIs(t, repo.Delete(t.Context(), o.ID), ErrNotFound)
}

func TestOrderListFilters(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewOrderRepository(db)
	c1 := seedClient(t, db, 1)
	c2 := seedClient(t, db, 2)
	dress := seedProduct(t, db, "Dress", "100.00", "Women", 10)
	tie := seedProduct(t, db, "Tie", "20.00", "Men", 10)

	o1 := seedOrder(t, db, c1, "pending", models.OrderItem{ProductID: dress.ID, Quantity: 1, UnitPrice: dress.SaleValue})
	o2 := seedOrder(t, db, c1, "Processing", models.OrderItem{ProductID: tie.ID, Quantity: 1, UnitPrice: tie.SaleValue})
	o3 := seedOrder(t, db, c2, "processed",
		models.OrderItem{ProductID: tie.ID, Quantity: 1, UnitPrice: tie.SaleValue},
		models.OrderItem{ProductID: dress.ID, Quantity: 1, UnitPrice: dress.SaleValue},
	)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	ids := func(orders []models.Order) []uint {
		out := make([]uint, 0, len(orders))
		for _, o := range orders {
			out = append(out, o.ID)
		}
		return out
	}

	cases := []struct {
		name string
		f    OrderFilter
		want []uint
	}{
		{"all", OrderFilter{}, []uint{o1.ID, o2.ID, o3.ID}},
		{"status substring", OrderFilter{Status: "PROCESS"}, []uint{o2.ID, o3.ID}},
		{"client", OrderFilter{ClientID: c1.ID}, []uint{o1.ID, o2.ID}},
		{"order id", OrderFilter{OrderID: o2.ID}, []uint{o2.ID}},
		{"section join", OrderFilter{Section: "women"}, []uint{o1.ID, o3.ID}},
		{"section no duplicates", OrderFilter{Section: "MEN"}, []uint{o1.ID, o2.ID, o3.ID}},
		{"date range", OrderFilter{From: &past, To: &future}, []uint{o1.ID, o2.ID, o3.ID}},
		{"future only", OrderFilter{From: &future}, []uint{}},
		{"combined", OrderFilter{ClientID: c2.ID, Section: "men", Status: "proc"}, []uint{o3.ID}},
		{"paged", OrderFilter{Page: Page{Skip: 1, Limit: 1}}, []uint{o2.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(t.Context(), tc.f)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}
