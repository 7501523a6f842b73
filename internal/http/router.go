package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
	"github.com/redmonkez12/neonkeys-api/internal/config"
	"github.com/redmonkez12/neonkeys-api/internal/httputil"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
	"github.com/redmonkez12/neonkeys-api/internal/metrics"
	"github.com/redmonkez12/neonkeys-api/internal/product"
	"github.com/redmonkez12/neonkeys-api/internal/user"
)

const serviceName = "NeonKeys API"

// Handlers bundles the resource handlers mounted under /api.
type Handlers struct {
	Users    *user.Handler
	Products *product.Handler
}

// Gate is the access control middleware protecting write and account routes.
type Gate interface {
	RequireAuth(next http.Handler) http.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, handlers Handlers, gate Gate, logger *logging.Logger, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders(!cfg.Server.IsDevelopment()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.Compress(5))

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", handlers.Users.Register)
			r.Post("/login", handlers.Users.Login)

			r.Group(func(r chi.Router) {
				r.Use(gate.RequireAuth)
				r.Get("/", handlers.Users.List)
				r.Get("/{id}", handlers.Users.Get)
				r.Put("/{id}", handlers.Users.Update)
				r.Put("/{id}/change-password", handlers.Users.ChangePassword)
				r.Patch("/{id}/toggle-status", handlers.Users.ToggleStatus)
				r.Delete("/{id}", handlers.Users.Delete)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.Products.List)
			r.Get("/category/{id}", handlers.Products.ListByCategory)
			r.Get("/{id}", handlers.Products.Get)

			r.Group(func(r chi.Router) {
				r.Use(gate.RequireAuth)
				r.Post("/", handlers.Products.Create)
				r.Put("/{id}", handlers.Products.Update)
				r.Patch("/{id}/stock", handlers.Products.AdjustStock)
				r.Patch("/{id}/toggle-status", handlers.Products.ToggleStatus)
				r.Delete("/{id}", handlers.Products.Delete)
			})
		})
	})

	return r
}

// ServiceInfo describes the running service
type ServiceInfo struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// handleRoot lists the resource roots
// @Summary      Service info
// @Description  Name of the service and its resource roots
// @Tags         health
// @Produce      json
// @Success      200 {object} ServiceInfo
// @Router       / [get]
func handleRoot(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, ServiceInfo{
		Message: serviceName,
		Endpoints: map[string]string{
			"users":    "/api/users",
			"products": "/api/products",
			"health":   "/health",
		},
	}, http.StatusOK)
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondErrorWithCode(w, "route not found", string(apperror.CodeNotFound), http.StatusNotFound)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.RespondError(w, "method not allowed", http.StatusMethodNotAllowed)
}
