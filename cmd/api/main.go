package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukapilot/biashara360/internal/admin"
	"github.com/dukapilot/biashara360/internal/auth"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/dukapilot/biashara360/internal/config"
	"github.com/dukapilot/biashara360/internal/events"
	"github.com/dukapilot/biashara360/internal/httpx"
	"github.com/dukapilot/biashara360/internal/inventory"
	kafkax "github.com/dukapilot/biashara360/internal/kafka"
	"github.com/dukapilot/biashara360/internal/marketplace"
	"github.com/dukapilot/biashara360/internal/orders"
	"github.com/dukapilot/biashara360/internal/postgres"
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
	config.SetupLogger(cfg, cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Migrations {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)
	emitter := events.NewEmitter(prod, cfg.ServiceName)

	businesses := &business.Repo{DB: db}
	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(businesses, &auth.AdminRepo{DB: db}, tokens)
	alerts := &inventory.LowStockSet{Redis: rdb}

	router := httpx.NewRouter(httpx.Handlers{
		Auth:        &httpx.AuthHandler{Service: authSvc},
		Business:    &httpx.BusinessHandler{Service: business.NewService(businesses, rdb)},
		Products:    &httpx.ProductsHandler{Service: inventory.NewService(&inventory.Repo{DB: db}, emitter, alerts, rdb)},
		Orders:      &httpx.OrdersHandler{Service: orders.NewService(&orders.Repo{DB: db}, emitter, rdb)},
		Marketplace: &httpx.MarketplaceHandler{Service: marketplace.NewService(&marketplace.Repo{DB: db}, rdb)},
		Admin:       &httpx.AdminHandler{Service: admin.NewService(&admin.Repo{DB: db}, businesses, authSvc, rdb)},
	}, httpx.Options{Tokens: tokens, CORSOrigins: cfg.CORSOrigins})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// flush queued events before the writer closes
	prod.Close()
	prod.WaitClosed()
	cancel()
}
