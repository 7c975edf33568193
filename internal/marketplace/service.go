package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReviewWindow bounds both the reviews shown on a storefront and the
// average rating computed over them.
const ReviewWindow = 10

type Service struct {
	Store Store
	// Redis caches storefronts; nil disables caching.
	Redis *redis.Client
}

func NewService(store Store, rdb *redis.Client) *Service {
	return &Service{Store: store, Redis: rdb}
}

func (s *Service) ListProducts(ctx context.Context, q Query) ([]Listing, error) {
	ls, err := s.Store.Listings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list marketplace: %w", err)
	}
	if q.Lat != nil && q.Lng != nil {
		Rank(ls, *q.Lat, *q.Lng)
	}
	return ls, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (Listing, error) {
	return s.Store.Listing(ctx, id)
}

func (s *Service) Storefront(ctx context.Context, businessID string) (Storefront, error) {
	key := fmt.Sprintf(redisx.KeyStorefront, businessID)
	if s.Redis != nil {
		var sf Storefront
		found, err := redisx.GetJSON(ctx, s.Redis, key, &sf)
		if err != nil {
			log.Warn().Err(err).Str("business_id", businessID).Msg("storefront cache read failed")
		} else if found {
			return sf, nil
		}
	}

	b, err := s.Store.ActiveBusiness(ctx, businessID)
	if err != nil {
		return Storefront{}, err
	}
	products, err := s.Store.PublishedProducts(ctx, businessID)
	if err != nil {
		return Storefront{}, err
	}
	reviews, err := s.Store.ApprovedReviews(ctx, businessID, ReviewWindow)
	if err != nil {
		return Storefront{}, err
	}
	sf := Storefront{
		Business:     b,
		Products:     products,
		Reviews:      reviews,
		AvgRating:    AverageRating(reviews),
		TotalReviews: len(reviews),
	}

	if s.Redis != nil {
		if err := redisx.SetJSON(ctx, s.Redis, key, sf, redisx.TTLStorefront); err != nil {
			log.Warn().Err(err).Str("business_id", businessID).Msg("storefront cache write failed")
		}
	}
	return sf, nil
}

// AverageRating is the arithmetic mean of rs, 0 when empty.
func AverageRating(rs []Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return float64(sum) / float64(len(rs))
}

// SubmitReview stores an unapproved review; it shows once an admin
// approves it.
func (s *Service) SubmitReview(ctx context.Context, in ReviewInput) (Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return Review{}, apperr.Validation("rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return Review{}, apperr.Validation("customer_name is required")
	}
	if _, err := s.Store.ActiveBusiness(ctx, in.BusinessID); err != nil {
		return Review{}, err
	}
	r := Review{
		ID:           uuid.NewString(),
		BusinessID:   in.BusinessID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		Rating:       in.Rating,
		Comment:      in.Comment,
	}
	if err := s.Store.InsertReview(ctx, &r); err != nil {
		return Review{}, fmt.Errorf("submit review: %w", err)
	}
	return r, nil
}

func (s *Service) SubmitComplaint(ctx context.Context, in ComplaintInput) (Complaint, error) {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.Description) == "" {
		return Complaint{}, apperr.Validation("customer_name and description are required")
	}
	if _, err := s.Store.ActiveBusiness(ctx, in.BusinessID); err != nil {
		return Complaint{}, err
	}
	c := Complaint{
		ID:            uuid.NewString(),
		BusinessID:    in.BusinessID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		Description:   in.Description,
		Status:        ComplaintPending,
	}
	if err := s.Store.InsertComplaint(ctx, &c); err != nil {
		return Complaint{}, fmt.Errorf("submit complaint: %w", err)
	}
	return c, nil
}
