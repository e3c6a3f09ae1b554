// Package server assembles the HTTP handler tree.
package server

import (
	"net/http"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/httpx"
	"github.com/diewo77/go-orders/internal/events"
	"github.com/diewo77/go-orders/internal/handlers"
	"github.com/diewo77/go-orders/internal/middleware"
	"github.com/diewo77/go-orders/internal/policy"
	"github.com/diewo77/go-orders/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// Deps are the collaborators the router wires together.
type Deps struct {
	DB     *gorm.DB
	Signer *auth.Signer
	// Gate authorizes service calls. Principals resolves bearer tokens and
	// defaults to Gate.
	Gate       *policy.AuthGate
	Principals auth.PrincipalResolver
	Events     events.Publisher
	Log        *zap.Logger
	AppName    string
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Principals == nil {
		d.Principals = d.Gate
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			d.Log.Warn("health check failed", zap.Error(err))
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "Welcome to " + d.AppName})
	})

	authSvc := services.NewAuthService(d.DB, d.Signer, d.Gate, d.Log)
	clientSvc := services.NewClientService(d.DB, d.Gate)
	productSvc := services.NewProductService(d.DB, d.Gate)
	orderSvc := services.NewOrderService(d.DB, d.Gate, d.Events, d.Log)

	handlers.NewAuthHandler(authSvc, d.Log).Register(mux, APIPrefix, auth.RequireAuth)
	handlers.NewClientHandler(clientSvc, d.Log).Register(mux, APIPrefix, auth.RequireAuth, auth.RequireElevated)
	handlers.NewProductHandler(productSvc, d.Log).Register(mux, APIPrefix, auth.RequireAuth, auth.RequireElevated)
	handlers.NewOrderHandler(orderSvc, d.Log).Register(mux, APIPrefix, auth.RequireAuth, auth.RequireElevated)

	var h http.Handler = mux
	h = auth.Middleware(d.Signer, d.Principals)(h)
	h = middleware.Recover(d.Log)(h)
	h = middleware.Logging(d.Log)(h)
	return middleware.RequestID(h)
}
