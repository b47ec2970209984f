package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/catalog/subcategories"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	// Gate protects every mutating catalog route and /api/auth/me.
	Gate               func(http.Handler) http.Handler
	AuthHandler        *auth.Handler
	CategoryHandler    *categories.Handler
	SubcategoryHandler *subcategories.Handler
	ProductHandler     *products.Handler
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewRouter constructs the chi.Router with back-office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	gate := params.Gate
	if gate == nil {
		gate = denyAll
	}

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, healthResponse{Status: "OK"})
		})
		if params.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				params.AuthHandler.MountRoutes(r, gate)
			})
		}
		if params.CategoryHandler != nil {
			r.Route("/categories", func(r chi.Router) {
				params.CategoryHandler.MountRoutes(r, gate)
			})
		}
		if params.SubcategoryHandler != nil {
			r.Route("/subcategories", func(r chi.Router) {
				params.SubcategoryHandler.MountRoutes(r, gate)
			})
		}
		if params.ProductHandler != nil {
			r.Route("/products", func(r chi.Router) {
				params.ProductHandler.MountRoutes(r, gate)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	})
}
