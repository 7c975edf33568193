package inventory

import (
	"context"
	"fmt"

	"github.com/dukapilot/biashara360/internal/events"
	"github.com/dukapilot/biashara360/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
)

// LowStockSet is the per-business Redis set of product ids below threshold.
type LowStockSet struct{ Redis *redis.Client }

func (l *LowStockSet) key(businessID string) string {
	return fmt.Sprintf(redisx.KeyLowStock, businessID)
}

func (l *LowStockSet) Add(ctx context.Context, businessID, productID string) error {
	return l.Redis.SAdd(ctx, l.key(businessID), productID).Err()
}

func (l *LowStockSet) Remove(ctx context.Context, businessID, productID string) error {
	return l.Redis.SRem(ctx, l.key(businessID), productID).Err()
}

func (l *LowStockSet) Members(ctx context.Context, businessID string) ([]string, error) {
	return l.Redis.SMembers(ctx, l.key(businessID)).Result()
}

// Watcher consumes StockMoved events and keeps LowStockSet current.
type Watcher struct {
	Redis       *redis.Client
	Alerts      *LowStockSet
	Threshold   int
	ServiceName string
}

// HandleStockMoved is installed as the consumer handler. Malformed messages
// are logged and skipped so their offset still commits.
func (w *Watcher) HandleStockMoved(ctx context.Context, m kafkago.Message) error {
	env, err := events.DecodeEnvelope(m.Value)
	if err != nil {
		log.Error().Err(err).Int64("offset", m.Offset).Msg("skip malformed event")
		return nil
	}
	if env.EventType != events.EventStockMoved {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, w.ServiceName, env.EventID)
	first, err := redisx.MarkOnce(ctx, w.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("dedup: %w", err)
	}
	if !first {
		return nil
	}

	p, err := events.UnwrapPayload[events.StockMovedPayload](env.Payload)
	if err != nil {
		log.Error().Err(err).Str("event_id", env.EventID).Msg("skip malformed payload")
		return nil
	}

	if p.NewStock < w.Threshold {
		err = w.Alerts.Add(ctx, p.BusinessID, p.ProductID)
	} else {
		err = w.Alerts.Remove(ctx, p.BusinessID, p.ProductID)
	}
	if err != nil {
		// let a redelivery try again
		_ = w.Redis.Del(ctx, dkey).Err()
		return fmt.Errorf("update low stock set: %w", err)
	}
	log.Debug().Str("product_id", p.ProductID).Int("new_stock", p.NewStock).Msg("stock level tracked")
	return nil
}
