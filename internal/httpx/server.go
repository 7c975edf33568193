package httpx

import (
	"net/http"
	"time"

	"github.com/dukapilot/biashara360/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth        *AuthHandler
	Business    *BusinessHandler
	Products    *ProductsHandler
	Orders      *OrdersHandler
	Marketplace *MarketplaceHandler
	Admin       *AdminHandler
}

type Options struct {
	Tokens      TokenParser
	CORSOrigins []string
}

func NewRouter(h Handlers, opt Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opt.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	asBusiness := chi.Chain(authenticate(opt.Tokens), requireRole(auth.RoleBusiness))
	asAdmin := chi.Chain(authenticate(opt.Tokens), requireRole(auth.RoleSuperAdmin))

	r.Route("/auth", func(r chi.Router) {
		h.Auth.Register(r)
		r.With(asBusiness...).Patch("/change-password", h.Auth.changePassword)
	})
	r.Route("/business", func(r chi.Router) {
		r.Use(asBusiness...)
		h.Business.Register(r)
	})
	r.Route("/products", func(r chi.Router) {
		r.Use(asBusiness...)
		h.Products.Register(r)
	})
	r.Route("/orders", func(r chi.Router) {
		h.Orders.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			r.Use(asBusiness...)
			h.Orders.Register(r)
		})
	})
	r.Route("/marketplace", h.Marketplace.Register)
	r.Route("/admin", func(r chi.Router) {
		r.Use(asAdmin...)
		h.Admin.Register(r)
	})
	return r
}
