package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/dukapilot/biashara360/internal/auth"
	"github.com/go-chi/chi/v5"
)

// AuthService is implemented by *auth.Service.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (auth.BusinessSession, error)
	Login(ctx context.Context, in auth.LoginInput) (auth.BusinessSession, error)
	LoginAdmin(ctx context.Context, in auth.AdminLoginInput) (auth.AdminSession, error)
	ForgotPassword(ctx context.Context, nameOrEmail string) (auth.ForgotPasswordAck, error)
	ChangePassword(ctx context.Context, businessID string, in auth.ChangePasswordInput) error
}

type AuthHandler struct {
	Service AuthService
}

type forgotPasswordReq struct {
	BusinessNameOrEmail string `json:"business_name_or_email" validate:"required"`
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/admin/login", h.loginAdmin)
	r.Post("/forgot-password", h.forgotPassword)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Service.Register(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Service.Login(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) loginAdmin(w http.ResponseWriter, r *http.Request) {
	var req auth.AdminLoginInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Service.LoginAdmin(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ack, err := h.Service.ForgotPassword(ctx, req.BusinessNameOrEmail)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ChangePasswordInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.ChangePassword(ctx, businessID(r), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
