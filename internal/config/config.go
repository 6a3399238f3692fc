// Package config loads the service configuration.
//
// Sources, highest priority first:
//  1. the -config flag;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables always override values read from a file.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/goliatone/go-scholarship-catalog/cache"
	"github.com/goliatone/go-scholarship-catalog/query"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	Redis   RedisConfig   `yaml:"redis"`
	Filters FiltersConfig `yaml:"filters"`
	Limits  LimitsConfig  `yaml:"limits"`
	Log     LogConfig     `yaml:"log"`
}

// HTTPConfig is the public REST server.
type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// StoreConfig selects and connects the data store.
type StoreConfig struct {
	Driver   string        `yaml:"driver" env:"STORE_DRIVER" env-default:"memory"`
	DSN      string        `yaml:"dsn" env:"STORE_DSN"`
	Database string        `yaml:"database" env:"STORE_DATABASE" env-default:"catalog"`
	Timeout  time.Duration `yaml:"timeout" env:"STORE_TIMEOUT" env-default:"5s"`
	Migrate  bool          `yaml:"migrate" env:"STORE_MIGRATE" env-default:"false"`
	Seed     bool          `yaml:"seed" env:"STORE_SEED" env-default:"false"`
}

// CacheConfig configures the response cache and the lookup cache.
type CacheConfig struct {
	Backend string             `yaml:"backend" env:"CACHE_BACKEND" env-default:"memory"`
	TTL     cache.TTLPolicy    `yaml:"ttl"`
	Lookup  cache.LookupConfig `yaml:"lookup"`
}

// RedisConfig is used when the cache backend is redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"catalog:resp:"`
}

// FiltersConfig controls how unknown reference slugs are handled.
type FiltersConfig struct {
	Strict bool `yaml:"strict" env:"FILTERS_STRICT" env-default:"false"`
}

// Mode returns the predicate builder mode.
func (f FiltersConfig) Mode() query.Mode {
	if f.Strict {
		return query.Strict
	}
	return query.Lenient
}

// LimitsConfig bounds page sizes.
type LimitsConfig struct {
	Default int `yaml:"default" env:"LIMIT_DEFAULT" env-default:"12"`
	Max     int `yaml:"max" env:"LIMIT_MAX" env-default:"100"`
}

func (l LimitsConfig) Limits() query.Limits {
	return query.Limits{Default: l.Default, Max: l.Max}
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Error reports an invalid configuration value.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// MustLoad panics when the configuration cannot be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration and validates it.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	fromFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		// ReadConfig overlays the environment after the file.
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	if path != "" {
		return fromFile(path)
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return fromFile(envPath)
	}
	if _, err := os.Stat("local.yaml"); err == nil {
		return fromFile("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return &cfg, nil
}

// Validate rejects unknown drivers and backends and non-positive durations
// and limits.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverMySQL, DriverMongo:
	default:
		return &Error{Field: "store.driver", Message: fmt.Sprintf("unsupported driver %q", c.Store.Driver)}
	}
	if c.Store.Driver != DriverMemory && c.Store.DSN == "" {
		return &Error{Field: "store.dsn", Message: "required for driver " + c.Store.Driver}
	}
	if c.Store.Timeout <= 0 {
		return &Error{Field: "store.timeout", Message: "must be greater than 0"}
	}

	switch c.Cache.Backend {
	case cache.BackendMemory, cache.BackendRedis:
	default:
		return &Error{Field: "cache.backend", Message: fmt.Sprintf("unsupported backend %q", c.Cache.Backend)}
	}
	ttls := map[string]time.Duration{
		"cache.ttl.default": c.Cache.TTL.Default,
		"cache.ttl.list":    c.Cache.TTL.List,
		"cache.ttl.search":  c.Cache.TTL.Search,
		"cache.ttl.detail":  c.Cache.TTL.Detail,
	}
	for _, field := range []string{"cache.ttl.default", "cache.ttl.list", "cache.ttl.search", "cache.ttl.detail"} {
		if ttls[field] <= 0 {
			return &Error{Field: field, Message: "must be greater than 0"}
		}
	}
	if err := c.Cache.Lookup.Validate(); err != nil {
		return &Error{Field: "cache.lookup", Message: err.Error()}
	}

	if c.Limits.Default <= 0 {
		return &Error{Field: "limits.default", Message: "must be greater than 0"}
	}
	if c.Limits.Max < c.Limits.Default {
		return &Error{Field: "limits.max", Message: "must not be below limits.default"}
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return &Error{Field: "log.format", Message: fmt.Sprintf("unsupported format %q", c.Log.Format)}
	}
	if _, ok := levels[c.Log.Level]; !ok {
		return &Error{Field: "log.level", Message: fmt.Sprintf("unsupported level %q", c.Log.Level)}
	}
	return nil
}
