package services

import (
	"testing"

	"github.com/diewo77/go-orders/internal/db/dbtest"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProductCreate(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProductService(db, testAuthz())
	in := ProductInput{
		Description:  "Silk blouse",
		SaleValue:    decimal.RequireFromString("149.90"),
		Barcode:      ptr("7891234567890"),
		Section:      "Women",
		InitialStock: 12,
	}

	_, err := svc.Create(t.Context(), standard, in)
	assert.ErrorIs(t, err, ErrForbidden)

	p, err := svc.Create(t.Context(), elevated, in)
	require.NoError(t, err)
	assert.Equal(t, 12, p.CurrentStock)
	assert.Equal(t, 12, p.InitialStock)
	assert.NotNil(t, p.ImageURLs)

	_, err = svc.Create(t.Context(), elevated, in)
	assert.ErrorIs(t, err, ErrBarcodeTaken)

	in.Barcode = ptr("  ")
	noCode, err := svc.Create(t.Context(), elevated, in)
	require.NoError(t, err)
	assert.Nil(t, noCode.Barcode)

	in.SaleValue = decimal.RequireFromString("1.999")
	_, err = svc.Create(t.Context(), elevated, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "too_many_decimals", ve.Violations["sale_value"])
}

func TestProductLookups(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProductService(db, testAuthz())
	p, err := svc.Create(t.Context(), elevated, ProductInput{
		Description: "Cap", SaleValue: decimal.RequireFromString("30"), Barcode: ptr("ABC"), Section: "Men", InitialStock: 0,
	})
	require.NoError(t, err)
	seedProduct(t, db, "Tote", "55.00", 4)

	got, err := svc.Get(t.Context(), standard, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cap", got.Description)

	_, err = svc.Get(t.Context(), standard, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	byCode, err := svc.GetByBarcode(t.Context(), standard, "ABC")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)
	_, err = svc.GetByBarcode(t.Context(), standard, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	available, err := svc.List(t.Context(), standard, repository.ProductFilter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Tote", available[0].Description)
}

func TestProductUpdate(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProductService(db, testAuthz())
	p := seedProduct(t, db, "Skirt", "70.00", 5)
	other, err := svc.Create(t.Context(), elevated, ProductInput{
		Description: "Dress", SaleValue: decimal.RequireFromString("90"), Barcode: ptr("TAKEN"), InitialStock: 1,
	})
	require.NoError(t, err)

	_, err = svc.Update(t.Context(), standard, p.ID, ProductPatch{CurrentStock: ptr(1)})
	assert.ErrorIs(t, err, ErrForbidden)

	price := decimal.RequireFromString("65.50")
	updated, err := svc.Update(t.Context(), elevated, p.ID, ProductPatch{SaleValue: &price, CurrentStock: ptr(9)})
	require.NoError(t, err)
	assert.True(t, updated.SaleValue.Equal(price))
	assert.Equal(t, 9, updated.CurrentStock)
	assert.Equal(t, "Skirt", updated.Description)

	_, err = svc.Update(t.Context(), elevated, p.ID, ProductPatch{CurrentStock: ptr(-1)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.Update(t.Context(), elevated, p.ID, ProductPatch{Barcode: ptr("TAKEN")})
	assert.ErrorIs(t, err, ErrBarcodeTaken)

	same, err := svc.Update(t.Context(), elevated, other.ID, ProductPatch{Barcode: ptr("TAKEN")})
	require.NoError(t, err)
	require.NotNil(t, same.Barcode)
	assert.Equal(t, "TAKEN", *same.Barcode)

	_, err = svc.Update(t.Context(), elevated, 999, ProductPatch{Section: ptr("x")})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductStockUpperBound(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProductService(db, testAuthz())

	_, err := svc.Create(t.Context(), elevated, ProductInput{
		Description: "Bulk", SaleValue: decimal.RequireFromString("1"), InitialStock: maxQuantity + 1,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "too_large", ve.Violations["initial_stock"])

	p, err := svc.Create(t.Context(), elevated, ProductInput{
		Description: "Bulk", SaleValue: decimal.RequireFromString("1"), InitialStock: maxQuantity,
	})
	require.NoError(t, err)
	assert.Equal(t, maxQuantity, p.CurrentStock)

	_, err = svc.Update(t.Context(), elevated, p.ID, ProductPatch{CurrentStock: ptr(maxQuantity + 1)})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "too_large", ve.Violations["current_stock"])
	assert.Equal(t, maxQuantity, stockOf(t, db, p.ID))
}

func TestProductPriceChangeKeepsSnapshot(t *testing.T) {
	db := dbtest.Open(t)
	products := NewProductService(db, testAuthz())
	orders := NewOrderService(db, testAuthz(), nil, zap.NewNop())
	c := seedClient(t, db, 1)
	p := seedProduct(t, db, "Vest", "20.00", 5)

	o, err := orders.CreateOrder(t.Context(), standard, CreateOrderInput{ClientID: c.ID, Items: []OrderLine{{ProductID: p.ID, Quantity: 2}}})
	require.NoError(t, err)

	price := decimal.RequireFromString("99.00")
	_, err = products.Update(t.Context(), elevated, p.ID, ProductPatch{SaleValue: &price})
	require.NoError(t, err)

	got, err := orders.GetOrder(t.Context(), standard, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, got.TotalValue.Equal(decimal.RequireFromString("40.00")))

	assert.ErrorIs(t, products.Delete(t.Context(), elevated, p.ID), ErrProductReferenced)
}

func TestProductDelete(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewProductService(db, testAuthz())
	p := seedProduct(t, db, "Sandal", "45.00", 2)

	assert.ErrorIs(t, svc.Delete(t.Context(), standard, p.ID), ErrForbidden)
	require.NoError(t, svc.Delete(t.Context(), elevated, p.ID))
	assert.ErrorIs(t, svc.Delete(t.Context(), elevated, p.ID), ErrProductNotFound)
}
