package api

import (
	"net/http"

	"github.com/dom/mini-crm/internal/api/handlers"
	"github.com/dom/mini-crm/internal/api/middleware"
	"github.com/dom/mini-crm/internal/config"
	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/service"
	"github.com/dom/mini-crm/internal/whatsapp"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, m)
	customerHandler := handlers.NewCustomerHandler(services.Customers, whatsapp.NewLinker(cfg.DefaultCountryCode))

	requireAuth := middleware.RequireAuth(services.Sessions, m)
	optionalAuth := middleware.OptionalAuth(services.Sessions)

	r.With(optionalAuth).Get("/", authHandler.Status)

	r.Route("/api", func(r chi.Router) {
		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(optionalAuth).Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Get("/sessions", authHandler.Sessions)
			})
		})

		// Customer routes
		r.Route("/customers", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", customerHandler.List)
			r.Post("/", customerHandler.Create)
			r.Get("/followups", customerHandler.FollowUps)
			r.Get("/tags", customerHandler.Tags)
			r.Get("/tags/popular", customerHandler.PopularTags)
			r.Get("/{id}", customerHandler.Get)
			r.Put("/{id}", customerHandler.Update)
			r.Delete("/{id}", customerHandler.Delete)
		})
	})

	return r
}
