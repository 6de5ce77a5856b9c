package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// catalogCacheMaxAge is the Cache-Control max-age (seconds) for catalog GETs.
// The catalog is refreshed by events, so short-lived browser caching is safe.
const catalogCacheMaxAge = 60

// RouterConfig holds the dependencies and settings for the HTTP router.
type RouterConfig struct {
	CartManager   *cart.Manager
	CatalogStore  *catalog.Store
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	PprofCIDRs    []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	cartHandler := NewCartHandler(cfg.CartManager, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.CatalogStore, cfg.Logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)

		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{productID}", cartHandler.SetQuantity)
		r.Delete("/items/{productID}", cartHandler.RemoveItem)

		r.Post("/open", cartHandler.OpenDrawer)
		r.Post("/close", cartHandler.CloseDrawer)
		r.Post("/toggle", cartHandler.ToggleDrawer)
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(middleware.CacheControl(catalogCacheMaxAge))

		r.Get("/products", catalogHandler.Products)
		r.Get("/collections", catalogHandler.Collections)
	})

	return r
}
