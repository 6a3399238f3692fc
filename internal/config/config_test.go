package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-scholarship-catalog/query"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL.List)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL.Search)
	assert.Equal(t, time.Hour, cfg.Cache.TTL.Detail)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL.Default)
	assert.Equal(t, 5000, cfg.Cache.Lookup.Capacity)
	assert.Equal(t, query.Limits{Default: 12, Max: 100}, cfg.Limits.Limits())
	assert.Equal(t, query.Lenient, cfg.Filters.Mode())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	yaml := strings.Join([]string{
		"http:",
		"  port: \"9090\"",
		"store:",
		"  driver: sqlite",
		"  dsn: \"file::memory:?cache=shared\"",
		"cache:",
		"  backend: redis",
		"  ttl:",
		"    list: 10m",
		"filters:",
		"  strict: true",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("LIMIT_MAX", "50")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL.List)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL.Search)
	assert.Equal(t, 50, cfg.Limits.Max)
	assert.Equal(t, query.Strict, cfg.Filters.Mode())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		t.Setenv("CONFIG_PATH", "")
		t.Chdir(t.TempDir())
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "oracle" }, "store.driver"},
		{"dsn required", func(c *Config) { c.Store.Driver = DriverPostgres }, "store.dsn"},
		{"store timeout", func(c *Config) { c.Store.Timeout = 0 }, "store.timeout"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"search ttl", func(c *Config) { c.Cache.TTL.Search = 0 }, "cache.ttl.search"},
		{"lookup capacity", func(c *Config) { c.Cache.Lookup.Capacity = 0 }, "cache.lookup"},
		{"default limit", func(c *Config) { c.Limits.Default = 0 }, "limits.default"},
		{"max below default", func(c *Config) { c.Limits.Max = 5 }, "limits.max"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			var cerr *Error
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	log := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)

	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}
