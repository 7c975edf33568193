package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dukapilot/biashara360/internal/orders"
	"github.com/go-chi/chi/v5"
)

// OrderService is implemented by *orders.Service.
type OrderService interface {
	Create(ctx context.Context, in orders.CreateInput, idemKey string) (orders.Order, bool, error)
	List(ctx context.Context, businessID, status string) ([]orders.Order, error)
	Get(ctx context.Context, businessID, id string) (orders.Order, error)
	UpdateStatus(ctx context.Context, businessID, id string, status orders.Status, mpesaCode string) (orders.Order, error)
	Stats(ctx context.Context, businessID string) (orders.Stats, error)
}

type OrdersHandler struct {
	Service OrderService
}

type createOrderResp struct {
	orders.Order
	Idempotent bool `json:"idempotent"`
}

type updateStatusReq struct {
	Status    orders.Status `json:"status" validate:"required"`
	MpesaCode string        `json:"mpesa_code"`
}

// RegisterPublic mounts the unauthenticated checkout endpoint.
func (h *OrdersHandler) RegisterPublic(r chi.Router) {
	r.Post("/", h.createOrder)
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/", h.listOrders)
	r.Get("/stats", h.stats)
	r.Get("/{id}", h.getOrder)
	r.Patch("/{id}/status", h.updateStatus)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, existed, err := h.Service.Create(ctx, req, strings.TrimSpace(r.Header.Get("Idempotency-Key")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, createOrderResp{Order: o, Idempotent: existed})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.List(ctx, businessID(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Service.Stats(ctx, businessID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.Get(ctx, businessID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.UpdateStatus(ctx, businessID(r), chi.URLParam(r, "id"), req.Status, strings.TrimSpace(req.MpesaCode))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
