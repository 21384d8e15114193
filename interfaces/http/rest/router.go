package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	querybus "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/observability"
	"github.com/Alexislovesarchitecture/contact-bubbles/interfaces/http/rest/handlers"
	"github.com/Alexislovesarchitecture/contact-bubbles/interfaces/http/rest/middleware"
	"github.com/Alexislovesarchitecture/contact-bubbles/pkg/auth"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

const readyTimeout = 2 * time.Second

// RouterConfig holds the optional parts of the HTTP stack
type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// JWT enables bearer authentication on /api routes when non-nil.
	JWT *auth.JWTService

	EnableTracing bool
	ServiceName   string
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	health       ports.HealthChecker
	metrics      *observability.Collector
	errorHandler *pkgerrors.ErrorHandler
	config       RouterConfig
	logger       *zap.Logger
}

// NewRouter creates a new router instance. health and metrics may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	health ports.HealthChecker,
	metrics *observability.Collector,
	errorHandler *pkgerrors.ErrorHandler,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		health:       health,
		metrics:      metrics,
		errorHandler: errorHandler,
		config:       config,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(rt.metrics.HTTPMetrics)
	}
	if rt.config.EnableTracing {
		router.Use(observability.TracingMiddleware(rt.config.ServiceName))
	}

	origins := rt.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.healthCheck)
		r.Get("/ready", rt.readinessCheck)

		r.Group(func(r chi.Router) {
			if rt.config.RequestTimeout > 0 {
				r.Use(chimiddleware.Timeout(rt.config.RequestTimeout))
			}
			if rt.config.RateLimitRPS > 0 {
				limiter := middleware.NewIPRateLimiter(rt.config.RateLimitRPS, rt.config.RateLimitBurst)
				r.Use(limiter.Middleware(rt.errorHandler))
			}
			if rt.config.JWT != nil {
				r.Use(middleware.Authenticate(rt.config.JWT, rt.errorHandler, rt.logger))
			}

			contactHandler := handlers.NewContactHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", contactHandler.SearchContacts)
				r.Post("/", contactHandler.CreateContact)
				r.Get("/{contactID}", contactHandler.GetContact)
				r.Put("/{contactID}", contactHandler.UpdateContact)
				r.Delete("/{contactID}", contactHandler.DeleteContact)
				r.Get("/{contactID}/relationships", contactHandler.ListRelationships)
			})

			relationshipHandler := handlers.NewRelationshipHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
			r.Route("/relationships", func(r chi.Router) {
				r.Post("/", relationshipHandler.CreateRelationship)
				r.Delete("/{relationshipID}", relationshipHandler.DeleteRelationship)
			})

			var observer handlers.GraphObserver
			if rt.metrics != nil {
				observer = rt.metrics
			}
			graphHandler := handlers.NewGraphHandler(rt.queryBus, observer, rt.errorHandler, rt.logger)
			r.Get("/graph/local", graphHandler.GetLocalGraph)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

// healthCheck handles liveness requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// readinessCheck pings the store
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := rt.health.Ping(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			rt.errorHandler.Handle(w, r, pkgerrors.NewUnavailableError("store").WithCause(err))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}
