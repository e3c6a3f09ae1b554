package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/diewo77/go-orders/internal/policy"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxQuantity bounds stock counts and order quantities to the INTEGER columns
// that store them.
const maxQuantity = math.MaxInt32

// ProductInput is the body of a product creation request.
type ProductInput struct {
	Description  string          `json:"description"`
	SaleValue    decimal.Decimal `json:"sale_value"`
	Barcode      *string         `json:"barcode,omitempty"`
	Section      string          `json:"section,omitempty"`
	InitialStock int             `json:"initial_stock"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	ImageURLs    []string        `json:"image_urls,omitempty"`
}

func (in ProductInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("description", in.Description, v)
	validation.MaxLen("description", in.Description, 500, v)
	validation.PositiveMoney("sale_value", in.SaleValue, v)
	validation.NonNegativeInt("initial_stock", in.InitialStock, v)
	validation.MaxInt("initial_stock", in.InitialStock, maxQuantity, v)
	validation.MaxLen("section", in.Section, 100, v)
	if in.Barcode != nil {
		validation.MaxLen("barcode", *in.Barcode, 100, v)
	}
	return v
}

// ProductPatch is a partial update; nil fields are left unchanged.
// An empty Barcode clears it.
type ProductPatch struct {
	Description  *string          `json:"description,omitempty"`
	SaleValue    *decimal.Decimal `json:"sale_value,omitempty"`
	Barcode      *string          `json:"barcode,omitempty"`
	Section      *string          `json:"section,omitempty"`
	CurrentStock *int             `json:"current_stock,omitempty"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
	ImageURLs    *[]string        `json:"image_urls,omitempty"`
}

func (p ProductPatch) Validate() validation.Violations {
	v := validation.Violations{}
	if p.Description != nil {
		validation.Required("description", *p.Description, v)
		validation.MaxLen("description", *p.Description, 500, v)
	}
	if p.SaleValue != nil {
		validation.PositiveMoney("sale_value", *p.SaleValue, v)
	}
	if p.CurrentStock != nil {
		validation.NonNegativeInt("current_stock", *p.CurrentStock, v)
		validation.MaxInt("current_stock", *p.CurrentStock, maxQuantity, v)
	}
	if p.Section != nil {
		validation.MaxLen("section", *p.Section, 100, v)
	}
	if p.Barcode != nil {
		validation.MaxLen("barcode", *p.Barcode, 100, v)
	}
	return v
}

func normalizeBarcode(b *string) *string {
	if b == nil {
		return nil
	}
	s := strings.TrimSpace(*b)
	if s == "" {
		return nil
	}
	return &s
}

// ProductService manages the catalog.
type ProductService struct {
	db       *gorm.DB
	products *repository.ProductRepository
	authz    Authorizer
}

func NewProductService(db *gorm.DB, authz Authorizer) *ProductService {
	return &ProductService{db: db, products: repository.NewProductRepository(db), authz: authz}
}

// Create adds a product whose current stock starts at its initial stock.
func (s *ProductService) Create(ctx context.Context, p auth.Principal, in ProductInput) (*models.Product, error) {
	if err := authorize(s.authz, p, gate.ActionCreate, policy.ResourceProduct); err != nil {
		return nil, err
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Barcode = normalizeBarcode(in.Barcode)
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	product := &models.Product{
		Description:  in.Description,
		SaleValue:    in.SaleValue,
		Barcode:      in.Barcode,
		Section:      strings.TrimSpace(in.Section),
		InitialStock: in.InitialStock,
		CurrentStock: in.InitialStock,
		ExpiryDate:   in.ExpiryDate,
		ImageURLs:    in.ImageURLs,
	}
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		if err := checkBarcodeUnique(ctx, products, 0, product.Barcode); err != nil {
			return err
		}
		return duplicate(products.Create(ctx, product), ErrBarcodeTaken)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Product, error) {
	if err := authorize(s.authz, p, gate.ActionView, policy.ResourceProduct); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(id, err)
	}
	return product, nil
}

// GetByBarcode returns the product carrying code.
func (s *ProductService) GetByBarcode(ctx context.Context, p auth.Principal, code string) (*models.Product, error) {
	if err := authorize(s.authz, p, gate.ActionView, policy.ResourceProduct); err != nil {
		return nil, err
	}
	product, err := s.products.FindByBarcode(ctx, strings.TrimSpace(code))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

// List returns products matching f.
func (s *ProductService) List(ctx context.Context, p auth.Principal, f repository.ProductFilter) ([]models.Product, error) {
	if err := authorize(s.authz, p, gate.ActionList, policy.ResourceProduct); err != nil {
		return nil, err
	}
	return s.products.List(ctx, f)
}

// Update applies a partial update. The stock row is locked so a concurrent
// order cannot interleave with a stock correction.
func (s *ProductService) Update(ctx context.Context, p auth.Principal, id uint, patch ProductPatch) (*models.Product, error) {
	if err := authorize(s.authz, p, gate.ActionUpdate, policy.ResourceProduct); err != nil {
		return nil, err
	}
	if err := invalid(patch.Validate()); err != nil {
		return nil, err
	}
	var updated *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		if err := products.LockForUpdate(ctx, []uint{id}); err != nil {
			return err
		}
		product, err := products.FindByID(ctx, id)
		if err != nil {
			return productNotFound(id, err)
		}
		if patch.Description != nil {
			product.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.SaleValue != nil {
			product.SaleValue = *patch.SaleValue
		}
		if patch.Barcode != nil {
			product.Barcode = normalizeBarcode(patch.Barcode)
			if err := checkBarcodeUnique(ctx, products, id, product.Barcode); err != nil {
				return err
			}
		}
		if patch.Section != nil {
			product.Section = strings.TrimSpace(*patch.Section)
		}
		if patch.CurrentStock != nil {
			product.CurrentStock = *patch.CurrentStock
		}
		if patch.ExpiryDate != nil {
			product.ExpiryDate = patch.ExpiryDate
		}
		if patch.ImageURLs != nil {
			product.ImageURLs = *patch.ImageURLs
		}
		if err := duplicate(products.Save(ctx, product), ErrBarcodeTaken); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a product no order item references.
func (s *ProductService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	if err := authorize(s.authz, p, gate.ActionDelete, policy.ResourceProduct); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		referenced, err := products.IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrProductReferenced
		}
		return productNotFound(id, products.Delete(ctx, id))
	})
}

func checkBarcodeUnique(ctx context.Context, products *repository.ProductRepository, self uint, barcode *string) error {
	if barcode == nil {
		return nil
	}
	other, err := products.FindByBarcode(ctx, *barcode)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != self:
		return ErrBarcodeTaken
	}
	return nil
}

func productNotFound(id uint, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &ProductNotFoundError{ProductID: id}
	}
	return err
}
