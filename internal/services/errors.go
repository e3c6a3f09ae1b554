package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/diewo77/go-orders/validation"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrClientNotFound     = errors.New("client not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrTransactionFailure = errors.New("transaction failed")

	ErrEmailTaken        = errors.New("email already registered")
	ErrCPFTaken          = errors.New("CPF already registered")
	ErrBarcodeTaken      = errors.New("barcode already registered")
	ErrClientReferenced  = errors.New("client is referenced by orders")
	ErrProductReferenced = errors.New("product is referenced by orders")

	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
)

// ClientNotFoundError reports an unknown client id.
type ClientNotFoundError struct{ ClientID uint }

func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("client with id %d not found", e.ClientID)
}
func (e *ClientNotFoundError) Is(target error) bool { return target == ErrClientNotFound }

// ProductNotFoundError reports an unknown product id.
type ProductNotFoundError struct{ ProductID uint }

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %d not found", e.ProductID)
}
func (e *ProductNotFoundError) Is(target error) bool { return target == ErrProductNotFound }

// InsufficientStockError reports a product whose stock cannot cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product id %d. Available: %d, Requested: %d", e.ProductID, e.Available, e.Requested)
}
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ValidationError carries field violations for malformed input.
type ValidationError struct{ Violations validation.Violations }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Violations))
}
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// TransactionError wraps an unexpected storage error. Nothing was persisted.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string        { return e.Op + ": transaction failed: " + e.Err.Error() }
func (e *TransactionError) Unwrap() error        { return e.Err }
func (e *TransactionError) Is(target error) bool { return target == ErrTransactionFailure }

// isDomain reports whether err is one of the expected business outcomes
// rather than a storage failure.
func isDomain(err error) bool {
	for _, target := range []error{
		ErrUnauthenticated, ErrForbidden, ErrValidation,
		ErrClientNotFound, ErrProductNotFound, ErrOrderNotFound, ErrUserNotFound,
		ErrInsufficientStock, ErrEmailTaken, ErrCPFTaken, ErrBarcodeTaken,
		ErrClientReferenced, ErrProductReferenced,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Authorizer answers capability checks for a principal.
type Authorizer interface {
	Authorize(p auth.Principal, action gate.Action, resourceType string) error
}

func authorize(a Authorizer, p auth.Principal, action gate.Action, resourceType string) error {
	err := a.Authorize(p, action, resourceType)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthenticated):
		return ErrUnauthenticated
	default:
		return ErrForbidden
	}
}
