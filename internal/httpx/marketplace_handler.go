package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/dukapilot/biashara360/internal/marketplace"
	"github.com/go-chi/chi/v5"
)

// MarketplaceService is implemented by *marketplace.Service.
type MarketplaceService interface {
	ListProducts(ctx context.Context, q marketplace.Query) ([]marketplace.Listing, error)
	GetProduct(ctx context.Context, id string) (marketplace.Listing, error)
	Storefront(ctx context.Context, businessID string) (marketplace.Storefront, error)
	SubmitReview(ctx context.Context, in marketplace.ReviewInput) (marketplace.Review, error)
	SubmitComplaint(ctx context.Context, in marketplace.ComplaintInput) (marketplace.Complaint, error)
}

type MarketplaceHandler struct {
	Service MarketplaceService
}

func (h *MarketplaceHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/business/{id}", h.storefront)
	r.Post("/reviews", h.submitReview)
	r.Post("/complaints", h.submitComplaint)
}

func (h *MarketplaceHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q, err := marketplace.ParseQuery(v.Get("search"), v.Get("category"), v.Get("lat"), v.Get("lng"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ls, err := h.Service.ListProducts(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (h *MarketplaceHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	l, err := h.Service.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *MarketplaceHandler) storefront(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	sf, err := h.Service.Storefront(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sf)
}

func (h *MarketplaceHandler) submitReview(w http.ResponseWriter, r *http.Request) {
	var req marketplace.ReviewInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Service.SubmitReview(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *MarketplaceHandler) submitComplaint(w http.ResponseWriter, r *http.Request) {
	var req marketplace.ComplaintInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.SubmitComplaint(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
