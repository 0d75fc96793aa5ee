package rest

import (
	"net/http"

	"clubgraph-backend/application/ports"
	querybus "clubgraph-backend/application/queries/bus"
	"clubgraph-backend/infrastructure/config"
	"clubgraph-backend/interfaces/http/rest/handlers"
	"clubgraph-backend/interfaces/http/rest/middleware"
	"clubgraph-backend/pkg/common"
	pkgerrors "clubgraph-backend/pkg/errors"
	"clubgraph-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	queryBus  *querybus.QueryBus
	cache     ports.PayloadCache
	config    *config.Config
	collector *observability.Collector
	publisher *observability.CloudWatchPublisher
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	queryBus *querybus.QueryBus,
	cache ports.PayloadCache,
	cfg *config.Config,
	collector *observability.Collector,
	publisher *observability.CloudWatchPublisher,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Router {
	return &Router{
		queryBus:  queryBus,
		cache:     cache,
		config:    cfg,
		collector: collector,
		publisher: publisher,
		tracer:    tracer,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5, "application/json"))
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(middleware.Metrics(rt.collector))
	}

	// CORS configuration
	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.clubgraph.com"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match", "X-Request-ID"},
			ExposedHeaders:   []string{"ETag", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Prometheus scrape endpoint
	if rt.collector != nil {
		router.Method(http.MethodGet, "/metrics", rt.collector.Handler())
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		graphHandler := handlers.NewGraphHandler(
			rt.queryBus, rt.cache, rt.collector, rt.publisher, rt.tracer, rt.logger,
		)
		r.Get("/graph-data", graphHandler.GetGraphData)
		r.Post("/graph-data/invalidate", graphHandler.InvalidateCache)
	})

	// Unmatched routes get the JSON envelope, not chi's plain-text 404.
	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		appErr := pkgerrors.NewNotFoundError(req.URL.Path)
		common.RespondError(w, appErr.HTTPStatus, common.StandardErrorCodes.NotFound, appErr.Message)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
