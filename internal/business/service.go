package business

import (
	"context"
	"fmt"

	"github.com/dukapilot/biashara360/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Service struct {
	Store Store
	// Redis holds the cached storefronts dropped on profile changes.
	Redis *redis.Client
}

func NewService(store Store, rdb *redis.Client) *Service {
	return &Service{Store: store, Redis: rdb}
}

func (s *Service) Profile(ctx context.Context, id string) (Business, error) {
	return s.Store.ByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (Business, error) {
	b, err := s.Store.ByID(ctx, id)
	if err != nil {
		return Business{}, err
	}
	patch.Apply(&b)
	if err := s.Store.Save(ctx, &b); err != nil {
		return Business{}, fmt.Errorf("update profile: %w", err)
	}
	InvalidateStorefront(ctx, s.Redis, id)
	return b, nil
}

// InvalidateStorefront drops the cached public storefront of a business.
func InvalidateStorefront(ctx context.Context, rdb *redis.Client, businessID string) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, fmt.Sprintf(redisx.KeyStorefront, businessID)).Err(); err != nil {
		log.Warn().Err(err).Str("business_id", businessID).Msg("storefront cache invalidation failed")
	}
}
