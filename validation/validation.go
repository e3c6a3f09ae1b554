// Package validation collects field violations for request payloads.
package validation

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field name to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records a violation unless the field already has one.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLen(field, value string, n int, v Violations) {
	if len(value) > n {
		v.Add(field, "too_long")
	}
}

func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.Add(field, "invalid_email")
	}
}

func PositiveID(field string, id uint, v Violations) {
	if id == 0 {
		v.Add(field, "required")
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v.Add(field, "must_not_be_negative")
	}
}

// MaxInt rejects values above limit, e.g. what a 32-bit column can store.
func MaxInt(field string, val, limit int, v Violations) {
	if val > limit {
		v.Add(field, "too_large")
	}
}

// PositiveMoney requires a strictly positive amount with at most two decimals.
func PositiveMoney(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v.Add(field, "must_be_positive")
		return
	}
	if !val.Equal(val.Round(2)) {
		v.Add(field, "too_many_decimals")
	}
}
