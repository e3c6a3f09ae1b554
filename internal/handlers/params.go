package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit = 100
	maxLimit     = 200
	dateLayout   = "2006-01-02"
)

// paramError names the query or path parameter that failed to parse.
type paramError struct{ field, code string }

func (e *paramError) Error() string { return e.field + ": " + e.code }

func (e *paramError) write(w http.ResponseWriter) { badRequest(w, e.field, e.code) }

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uint, *paramError) {
	n, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil || n == 0 {
		return 0, &paramError{"id", "invalid_id"}
	}
	return uint(n), nil
}

// first returns the first non-empty value among the given aliases.
func first(q url.Values, names ...string) (string, string) {
	for _, name := range names {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return name, v
		}
	}
	return names[0], ""
}

func page(q url.Values) (repository.Page, *paramError) {
	p := repository.Page{Limit: defaultLimit}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, &paramError{"skip", "must_not_be_negative"}
		}
		p.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, &paramError{"limit", "must_be_positive"}
		}
		p.Limit = min(n, maxLimit)
	}
	return p, nil
}

func uintParam(q url.Values, names ...string) (uint, *paramError) {
	name, v := first(q, names...)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return 0, &paramError{name, "invalid_id"}
	}
	return uint(n), nil
}

func decimalParam(q url.Values, names ...string) (*decimal.Decimal, *paramError) {
	name, v := first(q, names...)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &paramError{name, "invalid_number"}
	}
	return &d, nil
}

func boolParam(q url.Values, names ...string) (bool, *paramError) {
	name, v := first(q, names...)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &paramError{name, "invalid_bool"}
	}
	return b, nil
}

// dateParam accepts RFC3339 or a bare date. A bare end date covers the
// whole day.
func dateParam(q url.Values, endOfDay bool, names ...string) (*time.Time, *paramError) {
	name, v := first(q, names...)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, &paramError{name, "invalid_date"}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

type deleted struct {
	ID     uint   `json:"id"`
	Detail string `json:"detail"`
}
