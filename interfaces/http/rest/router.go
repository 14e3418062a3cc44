package rest

import (
	"net/http"

	"mindmap/application/commands/bus"
	querybus "mindmap/application/queries/bus"
	"mindmap/infrastructure/config"
	"mindmap/interfaces/http/rest/handlers"
	"mindmap/interfaces/http/rest/middleware"
	"mindmap/pkg/auth"
	"mindmap/pkg/common"
	"mindmap/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	validator  *auth.JWTValidator
	limiter    *auth.UserRateLimiter
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	limiter *auth.UserRateLimiter,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		validator:  validator,
		limiter:    limiter,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestContext)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)
	if rt.cfg.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.cfg.RequestTimeout))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.limiter, rt.logger))

		r.Route("/mindmaps", func(r chi.Router) {
			h := handlers.NewMindMapHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{mindMapID}", h.Get)
			r.Put("/{mindMapID}", h.Update)
			r.Delete("/{mindMapID}", h.Delete)
		})

		r.Route("/sessions", func(r chi.Router) {
			h := handlers.NewSessionHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/", h.Open)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(middleware.SessionContext)
				r.Get("/", h.Get)
				r.Delete("/", h.Close)
				r.Get("/projection", h.Projection)
				r.Post("/nodes", h.AddChild)
				r.Post("/nodes/{nodeID}/siblings", h.AddSibling)
				r.Patch("/nodes/{nodeID}", h.Rename)
				r.Delete("/nodes/{nodeID}", h.DeleteNode)
				r.Post("/select", h.Select)
				r.Post("/undo", h.Undo)
				r.Post("/redo", h.Redo)
				r.Post("/history/{index}", h.ApplyHistory)
				r.Delete("/history", h.ClearHistory)
				r.Put("/title", h.SetTitle)
				r.Post("/save", h.Save)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   utils.NowRFC3339(),
	})
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v2")
		next.ServeHTTP(w, r)
	})
}
