package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/go-chi/chi/v5"
)

// ProductService is implemented by *inventory.Service.
type ProductService interface {
	CreateProduct(ctx context.Context, businessID string, in inventory.ProductInput) (inventory.Product, error)
	BulkOnboard(ctx context.Context, businessID string, items []inventory.BulkItem) ([]inventory.Product, error)
	ListProducts(ctx context.Context, businessID string, f inventory.Filter) ([]inventory.Product, error)
	GetProduct(ctx context.Context, businessID, id string) (inventory.ProductDetail, error)
	UpdateProduct(ctx context.Context, businessID, id string, patch inventory.ProductPatch) (inventory.Product, error)
	RecordSale(ctx context.Context, businessID, id string, qty int, notes string) (inventory.Product, error)
	DeleteProduct(ctx context.Context, businessID, id string) error
	InventorySummary(ctx context.Context, businessID string) (inventory.Summary, error)
	Categories(ctx context.Context, businessID string) ([]string, error)
	LowStock(ctx context.Context, businessID string) ([]inventory.Product, error)
}

type ProductsHandler struct {
	Service ProductService
}

type bulkOnboardReq struct {
	Items []inventory.BulkItem `json:"items" validate:"required,min=1,dive"`
}

type sellReq struct {
	Quantity int    `json:"quantity" validate:"gt=0"`
	Notes    string `json:"notes"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/bulk-onboard", h.bulkOnboard)
	r.Get("/", h.list)
	r.Get("/inventory-summary", h.summary)
	r.Get("/categories", h.categories)
	r.Get("/low-stock", h.lowStock)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/sell", h.sell)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req inventory.ProductInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Service.CreateProduct(ctx, businessID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) bulkOnboard(w http.ResponseWriter, r *http.Request) {
	var req bulkOnboardReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ps, err := h.Service.BulkOnboard(ctx, businessID(r), req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"count": len(ps), "products": ps})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := inventory.Filter{Category: q.Get("category"), Search: q.Get("search")}
	if v := q.Get("published"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, apperr.Validation("published must be a boolean"))
			return
		}
		f.Published = &b
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Service.ListProducts(ctx, businessID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Service.InventorySummary(ctx, businessID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *ProductsHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Service.Categories(ctx, businessID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *ProductsHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Service.LowStock(ctx, businessID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Service.GetProduct(ctx, businessID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch inventory.ProductPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Service.UpdateProduct(ctx, businessID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.DeleteProduct(ctx, businessID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *ProductsHandler) sell(w http.ResponseWriter, r *http.Request) {
	var req sellReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Service.RecordSale(ctx, businessID(r), chi.URLParam(r, "id"), req.Quantity, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
