package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/dukapilot/biashara360/internal/business"
	"github.com/go-chi/chi/v5"
)

// ProfileService is implemented by *business.Service.
type ProfileService interface {
	Profile(ctx context.Context, id string) (business.Business, error)
	UpdateProfile(ctx context.Context, id string, patch business.ProfilePatch) (business.Business, error)
}

type BusinessHandler struct {
	Service ProfileService
}

func (h *BusinessHandler) Register(r chi.Router) {
	r.Get("/me", h.profile)
	r.Patch("/me", h.updateProfile)
}

func (h *BusinessHandler) profile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Service.Profile(ctx, businessID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BusinessHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch business.ProfilePatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Service.UpdateProfile(ctx, businessID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
