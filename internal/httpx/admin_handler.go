package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/dukapilot/biashara360/internal/admin"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/dukapilot/biashara360/internal/marketplace"
	"github.com/go-chi/chi/v5"
)

// AdminService is implemented by *admin.Service.
type AdminService interface {
	Dashboard(ctx context.Context) (admin.Dashboard, error)
	Businesses(ctx context.Context) ([]business.Overview, error)
	UpdateBusinessStatus(ctx context.Context, id, status string) (business.Business, error)
	ResetBusinessPassword(ctx context.Context, id string) error
	Complaints(ctx context.Context) ([]admin.ComplaintView, error)
	UpdateComplaint(ctx context.Context, id string, in admin.ComplaintUpdate) (marketplace.Complaint, error)
	Reviews(ctx context.Context) ([]admin.ReviewView, error)
	ModerateReview(ctx context.Context, id string, approved bool) (marketplace.Review, error)
}

type AdminHandler struct {
	Service AdminService
}

type businessStatusReq struct {
	Status string `json:"status" validate:"required"`
}

type moderateReviewReq struct {
	IsApproved *bool `json:"is_approved" validate:"required"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/businesses", h.businesses)
	r.Patch("/businesses/{id}/status", h.businessStatus)
	r.Patch("/businesses/{id}/reset-password", h.resetPassword)
	r.Get("/complaints", h.complaints)
	r.Patch("/complaints/{id}", h.updateComplaint)
	r.Get("/reviews", h.reviews)
	r.Patch("/reviews/{id}", h.moderateReview)
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Service.Dashboard(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *AdminHandler) businesses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.Businesses(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) businessStatus(w http.ResponseWriter, r *http.Request) {
	var req businessStatusReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Service.UpdateBusinessStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *AdminHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.ResetBusinessPassword(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

func (h *AdminHandler) complaints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.Complaints(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) updateComplaint(w http.ResponseWriter, r *http.Request) {
	var req admin.ComplaintUpdate
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.UpdateComplaint(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) reviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.Reviews(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) moderateReview(w http.ResponseWriter, r *http.Request) {
	var req moderateReviewReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Service.ModerateReview(ctx, chi.URLParam(r, "id"), *req.IsApproved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}
