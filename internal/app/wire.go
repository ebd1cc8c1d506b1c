package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scratchden/platform/internal/catalog"
	"github.com/scratchden/platform/internal/encounter"
	"github.com/scratchden/platform/internal/guard"
	"github.com/scratchden/platform/internal/handler"
	"github.com/scratchden/platform/internal/infra"
	"github.com/scratchden/platform/internal/prize"
	"github.com/scratchden/platform/internal/purchase"
	"github.com/scratchden/platform/internal/session"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Catalog   *catalog.Catalog
	Analytics *infra.Analytics
	Logger    *slog.Logger
	// Source overrides the random source for prize rolls and encounter
	// triggers; nil means the production default.
	Source             prize.RandomSource
	CORSAllowedOrigins []string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	settings := deps.Catalog.Settings()

	// Core engines
	sessions := session.NewStore(settings)
	encounters := encounter.NewEngine(deps.Catalog, sessions, deps.Source)
	limiter := guard.NewSessionLimiter(settings.MaxSessionsPerDay, 24*time.Hour)
	svc := purchase.NewService(deps.Catalog, sessions, encounters, deps.Source, limiter, deps.Analytics, logger)

	// Handlers
	sessionHandler := handler.NewSessionHandler(svc)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		r.Get("/health", handler.HealthHandler(time.Now()))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/tickets", catalogHandler.ListTickets)
			r.Get("/tickets/{ticketTypeID}", catalogHandler.GetTicket)
			r.Get("/encounters", catalogHandler.ListEncounters)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.ListSessions)
			r.Post("/", sessionHandler.CreateSession)
			r.Get("/{sessionID}", sessionHandler.GetSession)
			r.Post("/{sessionID}/purchase", sessionHandler.Purchase)
			r.Delete("/{sessionID}", sessionHandler.Terminate)
		})
	})

	// Prometheus exposition uses its own content type
	r.Handle("/metrics", promhttp.Handler())

	return r
}
