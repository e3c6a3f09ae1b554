package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/diewo77/go-orders/internal/events"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/diewo77/go-orders/internal/policy"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxStatusLen   = 50
	publishTimeout = 5 * time.Second
)

// maxOrderTotal is the largest value a decimal(10,2) column holds.
var maxOrderTotal = decimal.RequireFromString("99999999.99")

// OrderLine is one requested product and quantity.
type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput is the body of an order creation request.
type CreateOrderInput struct {
	ClientID uint        `json:"client_id"`
	Status   *string     `json:"status,omitempty"`
	Items    []OrderLine `json:"items"`
}

// Validate checks the shape of the request without touching storage.
func (in CreateOrderInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.PositiveID("client_id", in.ClientID, v)
	if in.Status != nil {
		validateStatus(*in.Status, v)
	}
	if len(in.Items) == 0 {
		v.Add("items", "required")
	}
	for i, line := range in.Items {
		validation.PositiveID(fmt.Sprintf("items[%d].product_id", i), line.ProductID, v)
		validation.PositiveInt(fmt.Sprintf("items[%d].quantity", i), line.Quantity, v)
		validation.MaxInt(fmt.Sprintf("items[%d].quantity", i), line.Quantity, maxQuantity, v)
	}
	return v
}

// UpdateOrderInput carries the only mutable order field.
type UpdateOrderInput struct {
	Status *string `json:"status,omitempty"`
}

func (in UpdateOrderInput) Validate() validation.Violations {
	v := validation.Violations{}
	if in.Status != nil {
		validateStatus(*in.Status, v)
	}
	return v
}

func validateStatus(s string, v validation.Violations) {
	validation.Required("status", s, v)
	validation.MaxLen("status", strings.TrimSpace(s), maxStatusLen, v)
}

// OrderService is the order transaction engine: it validates an order
// against clients and the catalog and commits the order, its items and the
// stock decrements atomically.
type OrderService struct {
	db       *gorm.DB
	clients  *repository.ClientRepository
	products *repository.ProductRepository
	orders   *repository.OrderRepository
	authz    Authorizer
	events   events.Publisher
	log      *zap.Logger

	// beforeStockWrite runs inside the transaction after the order rows are
	// inserted and before stock is decremented. Nil outside tests.
	beforeStockWrite func(tx *gorm.DB)
}

func NewOrderService(db *gorm.DB, authz Authorizer, pub events.Publisher, log *zap.Logger) *OrderService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &OrderService{
		db:       db,
		clients:  repository.NewClientRepository(db),
		products: repository.NewProductRepository(db),
		orders:   repository.NewOrderRepository(db),
		authz:    authz,
		events:   pub,
		log:      log,
	}
}

// orderPlan is the validated, not yet persisted, content of an order.
type orderPlan struct {
	items []models.OrderItem
	total decimal.Decimal
	// demand is the summed quantity per product, in first-seen order.
	demand   map[uint]int
	products []*models.Product
}

// plan resolves every line in caller order and checks stock, accumulating
// the demand of repeated products. Nothing is written.
func plan(ctx context.Context, catalog *repository.ProductRepository, lines []OrderLine) (*orderPlan, error) {
	p := &orderPlan{total: decimal.Zero, demand: make(map[uint]int, len(lines))}
	seen := make(map[uint]*models.Product, len(lines))
	for _, line := range lines {
		product, ok := seen[line.ProductID]
		if !ok {
			found, err := catalog.FindByID(ctx, line.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			if err != nil {
				return nil, err
			}
			product = found
			seen[line.ProductID] = found
			p.products = append(p.products, found)
		}

		requested := p.demand[product.ID] + line.Quantity
		if !product.InStock(requested) {
			return nil, &InsufficientStockError{ProductID: product.ID, Available: product.CurrentStock, Requested: requested}
		}
		p.demand[product.ID] = requested

		item := models.OrderItem{ProductID: product.ID, Quantity: line.Quantity, UnitPrice: product.SaleValue}
		p.items = append(p.items, item)
		p.total = p.total.Add(item.Total())
	}
	if p.total.GreaterThan(maxOrderTotal) {
		return nil, &ValidationError{Violations: validation.Violations{"items": "total_too_large"}}
	}
	return p, nil
}

// CreateOrder validates and persists a new order. Either the order, all of
// its items and every stock decrement are committed, or nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, p auth.Principal, in CreateOrderInput) (*models.Order, error) {
	if err := authorize(s.authz, p, gate.ActionCreate, policy.ResourceOrder); err != nil {
		return nil, err
	}
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	status := models.OrderStatusPending
	if in.Status != nil {
		status = strings.TrimSpace(*in.Status)
	}
	productIDs := make([]uint, len(in.Items))
	for i, line := range in.Items {
		productIDs[i] = line.ProductID
	}

	var created *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catalog := s.products.WithTx(tx)
		orders := s.orders.WithTx(tx)

		if _, err := s.clients.WithTx(tx).FindByID(ctx, in.ClientID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &ClientNotFoundError{ClientID: in.ClientID}
			}
			return err
		}
		if err := catalog.LockForUpdate(ctx, productIDs); err != nil {
			return err
		}
		pl, err := plan(ctx, catalog, in.Items)
		if err != nil {
			return err
		}

		order := &models.Order{ClientID: in.ClientID, Status: status, TotalValue: pl.total, Items: pl.items}
		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		if s.beforeStockWrite != nil {
			s.beforeStockWrite(tx)
		}
		// the guarded update re-checks stock at write time
		for _, product := range pl.products {
			if _, err := catalog.AdjustStock(ctx, product, -pl.demand[product.ID]); err != nil {
				var se *repository.StockError
				switch {
				case errors.As(err, &se):
					return &InsufficientStockError{ProductID: se.ProductID, Available: se.Available, Requested: se.Requested}
				case errors.Is(err, repository.ErrNotFound):
					return &ProductNotFoundError{ProductID: product.ID}
				}
				return err
			}
		}

		created, err = orders.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, s.failure("create order", err)
	}

	s.log.Info("order created",
		zap.Uint("order_id", created.ID),
		zap.Uint("client_id", created.ClientID),
		zap.Int("items", len(created.Items)),
		zap.String("total", created.TotalValue.StringFixed(2)),
		zap.Uint("user_id", p.UserID))
	s.publish(ctx, events.OrderCreated, created)
	return created, nil
}

// UpdateOrder overwrites the status when one is given. Items, totals and
// stock are never touched.
func (s *OrderService) UpdateOrder(ctx context.Context, p auth.Principal, id uint, in UpdateOrderInput) (*models.Order, error) {
	if err := authorize(s.authz, p, gate.ActionUpdate, policy.ResourceOrder); err != nil {
		return nil, err
	}
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		if in.Status != nil {
			if err := orders.UpdateStatus(ctx, id, strings.TrimSpace(*in.Status)); err != nil {
				return orderNotFound(id, err)
			}
		}
		o, err := orders.FindByID(ctx, id)
		if err != nil {
			return orderNotFound(id, err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, s.failure("update order", err)
	}
	if in.Status != nil {
		s.publish(ctx, events.OrderUpdated, updated)
	}
	return updated, nil
}

// DeleteOrder removes the order and its items. Stock is not restored.
func (s *OrderService) DeleteOrder(ctx context.Context, p auth.Principal, id uint) (uint, error) {
	if err := authorize(s.authz, p, gate.ActionDelete, policy.ResourceOrder); err != nil {
		return 0, err
	}

	var deleted *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		o, err := orders.FindByID(ctx, id)
		if err != nil {
			return orderNotFound(id, err)
		}
		if err := orders.Delete(ctx, id); err != nil {
			return orderNotFound(id, err)
		}
		deleted = o
		return nil
	})
	if err != nil {
		return 0, s.failure("delete order", err)
	}
	s.log.Info("order deleted", zap.Uint("order_id", id), zap.Uint("user_id", p.UserID))
	s.publish(ctx, events.OrderDeleted, deleted)
	return id, nil
}

// GetOrder returns one order with its client, items and products.
func (s *OrderService) GetOrder(ctx context.Context, p auth.Principal, id uint) (*models.Order, error) {
	if err := authorize(s.authz, p, gate.ActionView, policy.ResourceOrder); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, orderNotFound(id, err)
	}
	return o, nil
}

// ListOrders returns orders matching f.
func (s *OrderService) ListOrders(ctx context.Context, p auth.Principal, f repository.OrderFilter) ([]models.Order, error) {
	if err := authorize(s.authz, p, gate.ActionList, policy.ResourceOrder); err != nil {
		return nil, err
	}
	return s.orders.List(ctx, f)
}

func orderNotFound(id uint, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	return err
}

// failure passes business errors through and wraps anything else as a
// TransactionError.
func (s *OrderService) failure(op string, err error) error {
	if isDomain(err) {
		return err
	}
	s.log.Error("order transaction failed", zap.String("op", op), zap.Error(err))
	return &TransactionError{Op: op, Err: err}
}

// publish is best effort: the transaction is already committed.
func (s *OrderService) publish(ctx context.Context, t events.Type, o *models.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, events.NewOrderEvent(t, o)); err != nil {
		s.log.Warn("publish order event failed", zap.String("type", string(t)), zap.Uint("order_id", o.ID), zap.Error(err))
	}
}
