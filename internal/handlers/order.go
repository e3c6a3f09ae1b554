package handlers

import (
	"net/http"

	"github.com/diewo77/go-orders/httpx"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/internal/services"
	"go.uber.org/zap"
)

type OrderHandler struct {
	svc *services.OrderService
	log *zap.Logger
}

func NewOrderHandler(svc *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

func (h *OrderHandler) Register(mux *http.ServeMux, prefix string, authed, elevated func(http.Handler) http.Handler) {
	mux.Handle("GET "+prefix+"/orders", authed(http.HandlerFunc(h.List)))
	mux.Handle("POST "+prefix+"/orders", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET "+prefix+"/orders/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("PUT "+prefix+"/orders/{id}", authed(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+prefix+"/orders/{id}", elevated(http.HandlerFunc(h.Delete)))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	f, perr := orderFilter(r)
	if perr != nil {
		perr.write(w)
		return
	}
	orders, err := h.svc.ListOrders(r.Context(), principal(r), f)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func orderFilter(r *http.Request) (repository.OrderFilter, *paramError) {
	q := r.URL.Query()
	var (
		f    repository.OrderFilter
		perr *paramError
	)
	if f.Page, perr = page(q); perr != nil {
		return f, perr
	}
	if f.From, perr = dateParam(q, false, "start_date", "periodo_inicio"); perr != nil {
		return f, perr
	}
	if f.To, perr = dateParam(q, true, "end_date", "periodo_fim"); perr != nil {
		return f, perr
	}
	if f.ClientID, perr = uintParam(q, "client_id", "cliente_id"); perr != nil {
		return f, perr
	}
	if f.OrderID, perr = uintParam(q, "order_id", "id_pedido"); perr != nil {
		return f, perr
	}
	_, f.Status = first(q, "status")
	_, f.Section = first(q, "section", "secao_produto")
	return f, nil
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "body", "invalid_json")
		return
	}
	o, err := h.svc.CreateOrder(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	o, err := h.svc.GetOrder(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	var in services.UpdateOrderInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "body", "invalid_json")
		return
	}
	o, err := h.svc.UpdateOrder(r.Context(), principal(r), id, in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, perr := pathID(r)
	if perr != nil {
		perr.write(w)
		return
	}
	deletedID, err := h.svc.DeleteOrder(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, deleted{ID: deletedID, Detail: "Order deleted successfully"})
}
