package handlers

import (
	"net/http"

	"github.com/diewo77/go-orders/httpx"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/internal/services"
	"go.uber.org/zap"
)

type ClientHandler struct {
	svc *services.ClientService
	log *zap.Logger
}

func NewClientHandler(svc *services.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{svc: svc, log: log}
}

func (h *ClientHandler) Register(mux *http.ServeMux, prefix string, authed, elevated func(http.Handler) http.Handler) {
	mux.Handle("GET "+prefix+"/clients", authed(http.HandlerFunc(h.List)))
	mux.Handle("POST "+prefix+"/clients", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET "+prefix+"/clients/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("PUT "+prefix+"/clients/{id}", authed(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+prefix+"/clients/{id}", elevated(http.HandlerFunc(h.Delete)))
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg, perr := page(q)
	if perr != nil {
		perr.write(w)
		return
	}
	f := repository.ClientFilter{Page: pg, Name: q.Get("name"), Email: q.Get("email")}
	clients, err := h.svc.List(r.Context(), principal(r), f)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "body", "invalid_json")
		return
	}
	c, err := h.svc.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	c, err := h.svc.Get(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	var patch services.ClientPatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		badRequest(w, "body", "invalid_json")
		return
	}
	c, err := h.svc.Update(r.Context(), principal(r), id, patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	if err := h.svc.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, deleted{ID: id, Detail: "Client deleted successfully"})
}
