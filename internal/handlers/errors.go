package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-orders/httpx"
	"github.com/diewo77/go-orders/internal/services"
	"go.uber.org/zap"
)

// writeError maps a service error to its HTTP status and JSON body.
// Unexpected errors are logged and reported as a bare 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		stock *services.InsufficientStockError
		ve    *services.ValidationError
	)
	switch {
	case errors.As(err, &stock):
		httpx.JSONError(w, http.StatusBadRequest, stock.Error(), map[string]any{
			"product_id": stock.ProductID,
			"available":  stock.Available,
			"requested":  stock.Requested,
		})
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound):
		httpx.JSONError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrCPFTaken),
		errors.Is(err, services.ErrBarcodeTaken),
		errors.Is(err, services.ErrInactiveUser):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrClientReferenced),
		errors.Is(err, services.ErrProductReferenced):
		httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		httpx.JSONError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// badRequest reports a malformed body or query parameter.
func badRequest(w http.ResponseWriter, field, code string) {
	httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{field: code})
}
