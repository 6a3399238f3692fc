// Package di builds the service object graph from configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-scholarship-catalog/cache"
	"github.com/goliatone/go-scholarship-catalog/catalog"
	"github.com/goliatone/go-scholarship-catalog/internal/config"
	"github.com/goliatone/go-scholarship-catalog/internal/httpapi"
	"github.com/goliatone/go-scholarship-catalog/internal/metrics"
	"github.com/goliatone/go-scholarship-catalog/pkg/testsupport"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
	"github.com/goliatone/go-scholarship-catalog/store/bunstore"
	"github.com/goliatone/go-scholarship-catalog/store/memstore"
	"github.com/goliatone/go-scholarship-catalog/store/mongostore"
	"github.com/goliatone/go-scholarship-catalog/storecache"
)

// Container holds the singletons of one running service.
type Container struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	base      store.Store
	store     store.ReadWriter
	lookup    cache.CacheService
	responses *cache.ResponseCache
	redis     redis.UniversalClient

	service *catalog.Service
	router  *gin.Engine
	closers []func() error
}

// Option overrides a dependency the container would otherwise build.
type Option func(*Container)

// WithLogger replaces the logger built from the log config.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// WithStore uses st instead of opening the configured driver.
func WithStore(st store.Store) Option {
	return func(c *Container) { c.base = st }
}

// WithRedis uses client for the redis response cache backend.
func WithRedis(client redis.UniversalClient) Option {
	return func(c *Container) { c.redis = client }
}

// New builds every component. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{cfg: *cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = cfg.Log.Logger(os.Stdout)
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = metrics.New(c.registry)

	if c.base == nil {
		base, err := c.openStore(ctx)
		if err != nil {
			return nil, err
		}
		c.base = base
	}

	lookup, err := cache.NewCacheService(cfg.Cache.Lookup)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("di: lookup cache: %w", err)
	}
	c.lookup = lookup
	c.store = storecache.New(c.base, lookup)

	responses, err := c.responseStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.responses = cache.NewResponseCache(responses,
		cache.WithDefaultTTL(cfg.Cache.TTL.Default),
		cache.WithMetrics(c.metrics),
	)

	builder := query.NewBuilder(catalog.SlugResolver(c.store), query.WithMode(cfg.Filters.Mode()))
	c.service = catalog.NewService(c.store,
		catalog.WithBuilder(builder),
		catalog.WithExecutor(catalog.NewExecutor(c.store,
			catalog.WithQueryTimeout(cfg.Store.Timeout),
			catalog.WithExecutorMetrics(c.metrics),
		)),
		catalog.WithEnricher(catalog.NewEnricher(c.store, c.metrics)),
		catalog.WithLimits(cfg.Limits.Limits()),
	)

	c.router = httpapi.NewRouter(httpapi.Options{
		Service:     c.service,
		Cache:       c.responses,
		TTL:         cfg.Cache.TTL,
		Metrics:     c.metrics,
		Gatherer:    c.registry,
		Logger:      c.logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	c.logger.Info("container ready",
		slog.String("store", cfg.Store.Driver),
		slog.String("cache", cfg.Cache.Backend),
		slog.String("filters", cfg.Filters.Mode().String()),
	)
	return c, nil
}

func (c *Container) openStore(ctx context.Context) (store.Store, error) {
	sc := c.cfg.Store
	switch sc.Driver {
	case config.DriverMemory:
		st := memstore.New()
		if sc.Seed {
			testsupport.SeedCatalog(st)
		}
		return st, nil

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(ctx, sc.Timeout)
		defer cancel()
		st, err := mongostore.Connect(ctx, sc.DSN, sc.Database)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, st.Close)
		c.warnSeed()
		return st, nil

	default:
		db, err := bunstore.Open(sc.Driver, sc.DSN)
		if err != nil {
			return nil, err
		}
		st := bunstore.New(db)
		c.closers = append(c.closers, st.Close)

		ctx, cancel := context.WithTimeout(ctx, sc.Timeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("di: ping %s: %w", sc.Driver, err)
		}
		if sc.Migrate {
			if err := st.Migrate(ctx); err != nil {
				c.Close()
				return nil, err
			}
		}
		c.warnSeed()
		return st, nil
	}
}

func (c *Container) warnSeed() {
	if c.cfg.Store.Seed {
		c.logger.Warn("store.seed only applies to the memory driver", slog.String("driver", c.cfg.Store.Driver))
	}
}

// responseStore returns the backend of the response cache. An unreachable
// redis is logged and used anyway; its failures read as misses.
func (c *Container) responseStore(ctx context.Context) (cache.ResponseStore, error) {
	if c.cfg.Cache.Backend != cache.BackendRedis {
		return cache.NewMemoryStore(), nil
	}
	if c.redis == nil {
		rc := c.cfg.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		c.redis = client
		c.closers = append(c.closers, client.Close)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		c.logger.Warn("redis unreachable, responses will not be cached until it recovers",
			slog.String("addr", c.cfg.Redis.Addr),
			slog.Any("error", err),
		)
	}
	return cache.NewRedisStore(c.redis, c.cfg.Redis.Prefix, c.cfg.Cache.TTL.Longest()), nil
}

// Close releases store and redis connections in reverse order of opening.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) Config() config.Config { return c.cfg }

func (c *Container) Logger() *slog.Logger { return c.logger }

// Registry holds the service collectors served on /metrics.
func (c *Container) Registry() *prometheus.Registry { return c.registry }

// Store is the lookup-cached store every component reads through.
func (c *Container) Store() store.ReadWriter { return c.store }

func (c *Container) LookupCache() cache.CacheService { return c.lookup }

func (c *Container) ResponseCache() *cache.ResponseCache { return c.responses }

func (c *Container) Service() *catalog.Service { return c.service }

// Router is the HTTP handler of the service.
func (c *Container) Router() *gin.Engine { return c.router }
