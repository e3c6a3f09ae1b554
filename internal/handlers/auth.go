package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-orders/httpx"
	"github.com/diewo77/go-orders/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *services.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// Register registers its routes on mux under prefix.
func (h *AuthHandler) Register(mux *http.ServeMux, prefix string, authed func(http.Handler) http.Handler) {
	mux.HandleFunc("POST "+prefix+"/auth/register", h.SignUp)
	mux.HandleFunc("POST "+prefix+"/auth/login", h.Login)
	mux.HandleFunc("POST "+prefix+"/auth/refresh-token", h.Refresh)
	mux.Handle("GET "+prefix+"/auth/users/me", authed(http.HandlerFunc(h.Me)))
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "body", "invalid_json")
		return
	}
	u, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login accepts a JSON body or an OAuth2-style password form where the
// username field carries the email.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := httpx.DecodeJSON(w, r, &in); err != nil {
			badRequest(w, "body", "invalid_json")
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			badRequest(w, "body", "invalid_form")
			return
		}
		in.Username = r.PostForm.Get("username")
		in.Password = r.PostForm.Get("password")
	}
	if in.Email == "" {
		in.Email = in.Username
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"username": "required", "password": "required"})
		return
	}
	pair, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := httpx.DecodeJSON(w, r, &in); err != nil || in.RefreshToken == "" {
		badRequest(w, "refresh_token", "required")
		return
	}
	pair, err := h.svc.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), principal(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
