package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type RegisterInput struct {
	BusinessName  string `json:"business_name" validate:"required"`
	BusinessEmail string `json:"business_email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Phone         string `json:"phone"`
}

type LoginInput struct {
	BusinessName string `json:"business_name" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

type AdminLoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type BusinessSession struct {
	Message  string           `json:"message"`
	Token    string           `json:"token"`
	Business business.Summary `json:"business"`
}

type AdminSession struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Admin   Admin  `json:"admin"`
}

type Service struct {
	Businesses business.Store
	Admins     AdminStore
	Tokens     *Issuer
}

func NewService(businesses business.Store, admins AdminStore, tokens *Issuer) *Service {
	return &Service{Businesses: businesses, Admins: admins, Tokens: tokens}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (BusinessSession, error) {
	name, email := strings.TrimSpace(in.BusinessName), strings.TrimSpace(in.BusinessEmail)
	if name == "" || email == "" || in.Password == "" {
		return BusinessSession{}, apperr.Validation("business_name, business_email and password are required")
	}
	if _, err := s.Businesses.ByNameOrEmail(ctx, name); err == nil {
		return BusinessSession{}, apperr.Conflict("business name or email already exists")
	}
	if _, err := s.Businesses.ByNameOrEmail(ctx, email); err == nil {
		return BusinessSession{}, apperr.Conflict("business name or email already exists")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return BusinessSession{}, err
	}
	b := business.Business{
		ID:            uuid.NewString(),
		BusinessName:  name,
		BusinessEmail: email,
		PasswordHash:  hash,
		Phone:         strings.TrimSpace(in.Phone),
		Status:        business.StatusActive,
	}
	// the unique indexes still catch a concurrent duplicate
	if err := s.Businesses.Create(ctx, &b); err != nil {
		return BusinessSession{}, fmt.Errorf("register business: %w", err)
	}
	log.Info().Str("business_id", b.ID).Msg("business registered")
	return s.businessSession("Business registered successfully", b)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (BusinessSession, error) {
	b, err := s.Businesses.ByName(ctx, strings.TrimSpace(in.BusinessName))
	if apperr.Is(err, apperr.KindNotFound) {
		return BusinessSession{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return BusinessSession{}, err
	}
	ok, err := CheckPassword(b.PasswordHash, in.Password)
	if err != nil {
		return BusinessSession{}, err
	}
	if !ok {
		return BusinessSession{}, apperr.Unauthorized("invalid credentials")
	}
	if b.Status == business.StatusSuspended {
		return BusinessSession{}, apperr.Unauthorized("your account has been suspended, please contact admin")
	}
	return s.businessSession("Login successful", b)
}

func (s *Service) businessSession(msg string, b business.Business) (BusinessSession, error) {
	token, err := s.Tokens.Issue(Identity{
		Subject:             b.ID,
		BusinessID:          b.ID,
		Role:                RoleBusiness,
		Email:               b.BusinessEmail,
		ForcePasswordChange: b.ForcePasswordChange,
	})
	if err != nil {
		return BusinessSession{}, err
	}
	return BusinessSession{Message: msg, Token: token, Business: b.Summary()}, nil
}

func (s *Service) LoginAdmin(ctx context.Context, in AdminLoginInput) (AdminSession, error) {
	a, err := s.Admins.AdminByEmail(ctx, strings.TrimSpace(in.Email))
	if apperr.Is(err, apperr.KindNotFound) {
		return AdminSession{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return AdminSession{}, err
	}
	ok, err := CheckPassword(a.PasswordHash, in.Password)
	if err != nil {
		return AdminSession{}, err
	}
	if !ok {
		return AdminSession{}, apperr.Unauthorized("invalid credentials")
	}
	token, err := s.Tokens.Issue(Identity{Subject: a.ID, Role: RoleSuperAdmin, Email: a.Email})
	if err != nil {
		return AdminSession{}, err
	}
	return AdminSession{Message: "Admin login successful", Token: token, Admin: a}, nil
}

type ForgotPasswordAck struct {
	Message    string `json:"message"`
	BusinessID string `json:"business_id"`
}

// ForgotPassword only acknowledges; the reset itself is an admin action.
func (s *Service) ForgotPassword(ctx context.Context, nameOrEmail string) (ForgotPasswordAck, error) {
	b, err := s.Businesses.ByNameOrEmail(ctx, strings.TrimSpace(nameOrEmail))
	if err != nil {
		return ForgotPasswordAck{}, err
	}
	log.Info().Str("business_id", b.ID).Msg("password reset requested")
	return ForgotPasswordAck{
		Message:    "Password reset request sent to Super Admin. Please contact support.",
		BusinessID: b.ID,
	}, nil
}

func (s *Service) ChangePassword(ctx context.Context, businessID string, in ChangePasswordInput) error {
	if in.NewPassword == "" {
		return apperr.Validation("new_password is required")
	}
	b, err := s.Businesses.ByID(ctx, businessID)
	if err != nil {
		return err
	}
	ok, err := CheckPassword(b.PasswordHash, in.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("current password is incorrect")
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.Businesses.SetPassword(ctx, businessID, hash, false)
}

// ResetBusinessPassword sets the well-known reset password and forces a
// change on next login.
func (s *Service) ResetBusinessPassword(ctx context.Context, businessID string) error {
	hash, err := HashPassword(ResetPassword)
	if err != nil {
		return err
	}
	if err := s.Businesses.SetPassword(ctx, businessID, hash, true); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	log.Info().Str("business_id", businessID).Msg("business password reset")
	return nil
}

// EnsureAdmin creates or refreshes an admin account, used by the seed tool.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (Admin, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Admin{}, err
	}
	a := Admin{ID: uuid.NewString(), Email: email, PasswordHash: hash, Name: name, Role: RoleSuperAdmin}
	if err := s.Admins.UpsertAdmin(ctx, &a); err != nil {
		return Admin{}, fmt.Errorf("ensure admin: %w", err)
	}
	return a, nil
}
