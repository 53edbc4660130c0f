package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"anjoman/internal/catalog"
	"anjoman/internal/orchestrator"
	"anjoman/internal/sessions"
	"anjoman/internal/store"
)

// Providers reports which LLM providers have a configured client.
// Satisfied by *llm.Router.
type Providers interface {
	Providers() []string
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	db *store.DB,
	sessStore *sessions.Store,
	dana *orchestrator.Dana,
	runner *orchestrator.Runner,
	cat *catalog.Catalog,
	providers Providers,
	defaultBudget float64,
	apiKey string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(db)
	modelsH := NewModelsHandler(cat, providers)
	sessionH := NewSessionHandler(sessStore, dana, runner, providers, defaultBudget, logger)

	// Unauthenticated routes
	r.Get("/", healthH.Health)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Get("/models", modelsH.List)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/propose", sessionH.Propose)
			r.Post("/", sessionH.Create)
			r.Get("/", sessionH.List)
			r.Get("/{id}", sessionH.Get)
			r.Delete("/{id}", sessionH.Delete)
			r.Post("/{id}/complete", sessionH.Complete)
			r.Post("/{id}/iterate", sessionH.Iterate)
			r.Post("/{id}/iterate/stream", sessionH.IterateStream)
		})
	})

	return r
}
