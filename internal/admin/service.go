package admin

import (
	"context"
	"fmt"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/dukapilot/biashara360/internal/marketplace"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PasswordResetter is implemented by *auth.Service.
type PasswordResetter interface {
	ResetBusinessPassword(ctx context.Context, businessID string) error
}

type Service struct {
	Store     Store
	Accounts  business.Store
	Passwords PasswordResetter
	// Redis holds storefront caches dropped by moderation.
	Redis *redis.Client
}

func NewService(store Store, businesses business.Store, passwords PasswordResetter, rdb *redis.Client) *Service {
	return &Service{Store: store, Accounts: businesses, Passwords: passwords, Redis: rdb}
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	return s.Store.Dashboard(ctx)
}

func (s *Service) Businesses(ctx context.Context) ([]business.Overview, error) {
	return s.Accounts.List(ctx)
}

func (s *Service) UpdateBusinessStatus(ctx context.Context, id, status string) (business.Business, error) {
	st, err := business.ParseStatus(status)
	if err != nil {
		return business.Business{}, err
	}
	if err := s.Accounts.SetStatus(ctx, id, st); err != nil {
		return business.Business{}, fmt.Errorf("update business status: %w", err)
	}
	log.Info().Str("business_id", id).Str("status", string(st)).Msg("business status changed")
	business.InvalidateStorefront(ctx, s.Redis, id)
	return s.Accounts.ByID(ctx, id)
}

func (s *Service) ResetBusinessPassword(ctx context.Context, id string) error {
	return s.Passwords.ResetBusinessPassword(ctx, id)
}

func (s *Service) Complaints(ctx context.Context) ([]ComplaintView, error) {
	return s.Store.Complaints(ctx)
}

func (s *Service) UpdateComplaint(ctx context.Context, id string, in ComplaintUpdate) (marketplace.Complaint, error) {
	st := marketplace.ComplaintStatus(in.Status)
	if st != marketplace.ComplaintPending && st != marketplace.ComplaintResolved {
		return marketplace.Complaint{}, apperr.Validation("invalid complaint status %q", in.Status)
	}
	return s.Store.UpdateComplaint(ctx, id, st, in.Resolution)
}

func (s *Service) Reviews(ctx context.Context) ([]ReviewView, error) {
	return s.Store.Reviews(ctx)
}

// ModerateReview approves or hides a review and refreshes the storefront
// that shows it.
func (s *Service) ModerateReview(ctx context.Context, id string, approved bool) (marketplace.Review, error) {
	r, err := s.Store.SetReviewApproval(ctx, id, approved)
	if err != nil {
		return marketplace.Review{}, err
	}
	business.InvalidateStorefront(ctx, s.Redis, r.BusinessID)
	return r, nil
}
