package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	wishHandler "github.com/zhouzirui/wish-api/backend/internal/handler/wish"
	middlewarePkg "github.com/zhouzirui/wish-api/backend/internal/middleware"
	wishModel "github.com/zhouzirui/wish-api/backend/internal/model/wish"
	"github.com/zhouzirui/wish-api/backend/pkg/utils"
)

// Options controls the optional parts of the router.
type Options struct {
	AllowedOrigin string
	// Metrics is mounted at /metrics when non-nil.
	Metrics *middlewarePkg.Metrics
	// RateLimiter wraps the /wishes routes when non-nil; /health and /metrics are exempt.
	RateLimiter *middlewarePkg.RateLimiter
}

// NewRouter wires HTTP routes to the wish store.
func NewRouter(wishes wishModel.Store, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(opts.AllowedOrigin))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		items, err := wishes.List(r.Context())
		if err != nil {
			log.Printf("[health] wish store unavailable: %v", err)
			utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"wishes": len(items),
		})
	})

	r.Group(func(api chi.Router) {
		if opts.RateLimiter != nil {
			api.Use(opts.RateLimiter.Middleware)
		}
		wishHandler.New(wishes).RegisterRoutes(api)
	})

	return r
}
