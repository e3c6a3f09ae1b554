package handlers

import (
	"net/http"

	"github.com/diewo77/go-orders/httpx"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/internal/services"
	"go.uber.org/zap"
)

type ProductHandler struct {
	svc *services.ProductService
	log *zap.Logger
}

func NewProductHandler(svc *services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: log}
}

func (h *ProductHandler) Register(mux *http.ServeMux, prefix string, authed, elevated func(http.Handler) http.Handler) {
	mux.Handle("GET "+prefix+"/products", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET "+prefix+"/products/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("GET "+prefix+"/products/barcode/{code}", authed(http.HandlerFunc(h.GetByBarcode)))
	mux.Handle("POST "+prefix+"/products", elevated(http.HandlerFunc(h.Create)))
	mux.Handle("PUT "+prefix+"/products/{id}", elevated(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+prefix+"/products/{id}", elevated(http.HandlerFunc(h.Delete)))
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	f, perr := productFilter(r)
	if perr != nil {
		perr.write(w)
		return
	}
	products, err := h.svc.List(r.Context(), principal(r), f)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func productFilter(r *http.Request) (repository.ProductFilter, *paramError) {
	q := r.URL.Query()
	var (
		f    repository.ProductFilter
		perr *paramError
	)
	if f.Page, perr = page(q); perr != nil {
		return f, perr
	}
	_, f.Section = first(q, "section", "categoria")
	if f.MinPrice, perr = decimalParam(q, "min_price", "preco_min"); perr != nil {
		return f, perr
	}
	if f.MaxPrice, perr = decimalParam(q, "max_price", "preco_max"); perr != nil {
		return f, perr
	}
	if f.AvailableOnly, perr = boolParam(q, "available", "disponibilidade"); perr != nil {
		return f, perr
	}
	return f, nil
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	p, err := h.svc.Get(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetByBarcode(r.Context(), principal(r), r.PathValue("code"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "body", "invalid_json")
		return
	}
	p, err := h.svc.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	var patch services.ProductPatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		badRequest(w, "body", "invalid_json")
		return
	}
	p, err := h.svc.Update(r.Context(), principal(r), id, patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	if err := h.svc.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, deleted{ID: id, Detail: "Product deleted successfully"})
}
