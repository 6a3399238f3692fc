package cache

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-scholarship-catalog/internal/cacheinfra"
)

// Backend names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// LookupConfig configures the in-process lookup cache that sits in front of
// single-record reads (reference slugs, related records).
type LookupConfig struct {
	Capacity             int           `yaml:"capacity" env:"LOOKUP_CAPACITY" env-default:"5000"`
	NumShards            int           `yaml:"shards" env:"LOOKUP_SHARDS" env-default:"64"`
	TTL                  time.Duration `yaml:"ttl" env:"LOOKUP_TTL" env-default:"10m"`
	EvictionPercentage   int           `yaml:"eviction_percentage" env:"LOOKUP_EVICTION_PERCENTAGE" env-default:"10"`
	EarlyRefresh         bool          `yaml:"early_refresh" env:"LOOKUP_EARLY_REFRESH" env-default:"true"`
	MissingRecordStorage bool          `yaml:"missing_record_storage" env:"LOOKUP_MISSING_RECORD_STORAGE" env-default:"false"`
	EvictionInterval     time.Duration `yaml:"eviction_interval" env:"LOOKUP_EVICTION_INTERVAL" env-default:"1m"`
}

// DefaultLookupConfig returns a LookupConfig populated with sensible defaults.
func DefaultLookupConfig() LookupConfig {
	cfg := cacheinfra.DefaultConfig()
	return LookupConfig{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EarlyRefresh:         cfg.EarlyRefresh != nil,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}

// Validate checks whether the configuration values are valid.
func (c LookupConfig) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the sturdyc-backed lookup cache.
func NewCacheService(cfg LookupConfig) (CacheService, error) {
	return cacheinfra.NewSturdycService(cfg.toInternal())
}

// NewRedisStore returns a ResponseStore shared through Redis. Entries expire
// in Redis after expire.
func NewRedisStore(client redis.UniversalClient, prefix string, expire time.Duration) ResponseStore {
	return cacheinfra.NewRedisStore(client, prefix, expire)
}

// toInternal derives the early refresh window from TTL: refresh between 20%
// and 40% of the TTL, and block on refresh past 90%.
func (c LookupConfig) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if c.EarlyRefresh && c.TTL > 0 {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.TTL / 5,
			MaxAsyncRefreshTime: c.TTL * 2 / 5,
			SyncRefreshTime:     c.TTL * 9 / 10,
			RetryBaseDelay:      250 * time.Millisecond,
		}
	}

	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
}
