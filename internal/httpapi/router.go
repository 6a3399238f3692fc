// Package httpapi exposes the catalog over HTTP with gin.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-scholarship-catalog/cache"
	"github.com/goliatone/go-scholarship-catalog/catalog"
	"github.com/goliatone/go-scholarship-catalog/internal/metrics"
)

// detailEntities are served by slug under /api/<entity>/:slug.
var detailEntities = []string{"scholarships", "categories", "countries", "levels", "success-stories", "posts"}

// Options wires the router.
type Options struct {
	Service     *catalog.Service
	Cache       *cache.ResponseCache // nil disables response caching
	TTL         cache.TTLPolicy
	Keys        cache.KeySerializer // nil uses cache.NewDefaultKeySerializer
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // nil serves the default registry
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter builds the gin engine with every catalog route.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TTL == (cache.TTLPolicy{}) {
		opts.TTL = cache.DefaultTTLPolicy()
	}
	if opts.Keys == nil {
		opts.Keys = cache.NewDefaultKeySerializer()
	}

	r := gin.New()
	r.Use(
		RequestID(opts.Logger),
		Logger(),
		gin.CustomRecovery(recovered),
		Metrics(opts.Metrics),
		cors.New(corsConfig(opts.CORSOrigins)),
	)
	_ = r.SetTrustedProxies(nil)

	r.NoRoute(func(c *gin.Context) {
		respondStatus(c, http.StatusNotFound, "routing", "route not found")
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsHandler(opts.Gatherer)))

	h := &handlers{svc: opts.Service}
	rc := &responseCache{cache: opts.Cache, ttl: opts.TTL, keys: opts.Keys}

	api := r.Group("/api")
	api.GET("/filters", rc.middleware(kindList), h.filterOptions)
	api.GET("/scholarships/featured", rc.middleware(kindList), h.featured)

	for _, entity := range catalog.EntityNames() {
		group := api.Group("/" + entity)
		group.GET("", rc.middleware(kindList), h.list(entity))
		group.POST("", h.create(entity))
		group.PUT("/:id", h.update(entity))
		group.DELETE("/:id", h.remove(entity))
	}
	for _, entity := range detailEntities {
		api.GET("/"+entity+"/:slug", h.countView(entity), rc.middleware(kindDetail), h.detail(entity))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", headerRequestID},
		ExposeHeaders: []string{headerRequestID, headerCache},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func metricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
