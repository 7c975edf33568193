// Command seed creates the super admin account and a demo business with a
// few products so a fresh database can be explored.
package main

import (
	"context"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/auth"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/dukapilot/biashara360/internal/config"
	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/dukapilot/biashara360/internal/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	demoName     = "Mama Mboga Fresh"
	demoEmail    = "demo@biashara360.com"
	demoPassword = "demo12345"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	config.SetupLogger(cfg, "seed")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	businesses := &business.Repo{DB: db}
	authSvc := auth.NewService(businesses, &auth.AdminRepo{DB: db}, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))

	a, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, "Super Admin")
	if err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}
	log.Info().Str("email", a.Email).Msg("super admin ready")

	sess, err := authSvc.Register(ctx, auth.RegisterInput{
		BusinessName:  demoName,
		BusinessEmail: demoEmail,
		Password:      demoPassword,
		Phone:         "0712345678",
	})
	switch {
	case apperr.Is(err, apperr.KindConflict):
		log.Info().Str("business", demoName).Msg("demo business already seeded")
		return
	case err != nil:
		log.Fatal().Err(err).Msg("seed business")
	}

	lat, lng, addr := -1.2864, 36.8172, "Kenyatta Avenue, Nairobi"
	if _, err := business.NewService(businesses, nil).UpdateProfile(ctx, sess.Business.ID, business.ProfilePatch{
		LocationLat: &lat, LocationLng: &lng, LocationAddress: &addr,
	}); err != nil {
		log.Fatal().Err(err).Msg("seed location")
	}

	inv := inventory.NewService(&inventory.Repo{DB: db}, nil, nil, nil)
	products, err := inv.BulkOnboard(ctx, sess.Business.ID, []inventory.BulkItem{
		{Name: "Sukuma Wiki Bunch", QuantityBought: 50, TotalCost: decimal.NewFromInt(1000)},
		{Name: "Tomatoes 1kg", QuantityBought: 30, TotalCost: decimal.NewFromInt(3600)},
		{Name: "Maize Flour 2kg", QuantityBought: 20, TotalCost: decimal.NewFromInt(3200)},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed products")
	}
	published := true
	for _, p := range products {
		if _, err := inv.UpdateProduct(ctx, sess.Business.ID, p.ID, inventory.ProductPatch{IsPublished: &published}); err != nil {
			log.Fatal().Err(err).Str("product", p.Name).Msg("publish product")
		}
	}
	log.Info().Str("business", demoName).Int("products", len(products)).Msg("demo business seeded")
}
