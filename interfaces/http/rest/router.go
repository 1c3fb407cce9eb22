package rest

import (
	"net/http"

	"familytree-backend/infrastructure/di"
	"familytree-backend/interfaces/http/rest/handlers"
	"familytree-backend/interfaces/http/rest/middleware"
	v1 "familytree-backend/interfaces/http/rest/v1"
	pkgerrors "familytree-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.container.Tracer != nil {
		router.Use(rt.container.Tracer.Middleware)
	}

	if rt.container.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.familytree.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errHandler := pkgerrors.NewErrorHandler(rt.logger, rt.container.Config.IsDevelopment())

	accountHandler := handlers.NewAccountHandler(
		rt.container.Handlers.RegisterAccount,
		rt.container.QueryBus,
		rt.container.JWTGenerator,
		errHandler,
		rt.logger,
	)
	relationshipHandler := handlers.NewRelationshipHandler(
		rt.container.Handlers.CreateRelationship,
		rt.container.Handlers.ReconcileEdges,
		rt.container.CommandBus,
		rt.container.QueryBus,
		errHandler,
		rt.logger,
	)
	memberHandler := handlers.NewMemberHandler(
		rt.container.Handlers.AddManualMember,
		rt.container.Handlers.LinkManualMember,
		rt.container.QueryBus,
		errHandler,
		rt.logger,
	)
	treeHandler := handlers.NewTreeHandler(rt.container.QueryBus, errHandler, rt.logger)

	// API v1 routes (legacy - redirects to v2)
	router.Mount("/api/v1", v1.NewRouter())

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		// Registration is the only unauthenticated endpoint
		r.Post("/accounts", accountHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.container.JWTValidator))

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", accountHandler.SearchAccounts)
				r.Get("/{accountID}", accountHandler.GetAccount)
			})

			r.Route("/relationships", func(r chi.Router) {
				r.Post("/", relationshipHandler.CreateRelationship)
				r.Get("/", relationshipHandler.ListRelationships)
				r.Delete("/{relationshipID}", relationshipHandler.DeleteRelationship)
			})

			r.Route("/members", func(r chi.Router) {
				r.Post("/", memberHandler.AddMember)
				r.Get("/", memberHandler.ListMembers)
				r.Post("/{memberID}/link", memberHandler.LinkMember)
			})

			r.Route("/tree", func(r chi.Router) {
				r.Get("/", treeHandler.GetOwnTree)
				r.Get("/{accountID}", treeHandler.GetTree)
			})

			r.Post("/maintenance/reconcile", relationshipHandler.Reconcile)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte(`{"status":"ready"}`))
}
