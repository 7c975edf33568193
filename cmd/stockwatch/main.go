// Command stockwatch keeps the per-business low-stock sets current from
// the inventory.stock_moved stream.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukapilot/biashara360/internal/config"
	"github.com/dukapilot/biashara360/internal/events"
	"github.com/dukapilot/biashara360/internal/inventory"
	kafkax "github.com/dukapilot/biashara360/internal/kafka"
	"github.com/dukapilot/biashara360/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	service := cfg.ServiceName + "-stockwatch"
	config.SetupLogger(cfg, service)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	w := &inventory.Watcher{
		Redis:       rdb,
		Alerts:      &inventory.LowStockSet{Redis: rdb},
		Threshold:   cfg.LowStockThreshold,
		ServiceName: service,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.StockwatchGroup, events.TopicStockMoved, cfg.StockwatchWorkers)

	log.Info().
		Str("group", cfg.StockwatchGroup).
		Str("topic", events.TopicStockMoved).
		Int("workers", cfg.StockwatchWorkers).
		Int("threshold", cfg.LowStockThreshold).
		Msg("stockwatch started")
	if err := cons.Start(ctx, w.HandleStockMoved); err != nil {
		log.Error().Err(err).Msg("consumer exit")
		os.Exit(1)
	}
	log.Info().Msg("stockwatch stopped")
}
