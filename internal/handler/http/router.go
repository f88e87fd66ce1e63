package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annaigorevna5/sensual-beauty/internal/cart"
	"github.com/annaigorevna5/sensual-beauty/internal/catalog"
	"github.com/annaigorevna5/sensual-beauty/internal/checkout"
	"github.com/annaigorevna5/sensual-beauty/pkg/health"
	"github.com/annaigorevna5/sensual-beauty/pkg/middleware"
)

// RouterConfig bundles the dependencies of the HTTP surface.
type RouterConfig struct {
	Catalog        *catalog.Catalog
	Query          *catalog.Query
	CartStore      *cart.Store
	Checkout       *checkout.Service
	Health         *health.Handler
	Logger         *slog.Logger
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(timeout))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.Query, cfg.Logger)
	cartHandler := NewCartHandler(cfg.CartStore, cfg.Catalog, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", catalogHandler.ListProducts)
			r.Put("/filters", catalogHandler.SetFilters)
			r.Post("/reveal", catalogHandler.RevealMore)
			r.Post("/reset", catalogHandler.Reset)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/tags", catalogHandler.ListTags)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/summary", checkoutHandler.GetSummary)
			r.Post("/confirm", checkoutHandler.Confirm)
		})
	})

	return r
}
