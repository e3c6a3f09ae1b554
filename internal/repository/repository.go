// Package repository wraps GORM access to the persisted entities.
//
// Every repository can be bound to a transaction with WithTx, which is how
// services compose several repositories into one unit of work.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned when a stock adjustment would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError details a rejected stock adjustment.
type StockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// Page bounds a list query.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Skip > 0 {
		q = q.Offset(p.Skip)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

// contains builds a case-insensitive LIKE pattern.
func contains(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
