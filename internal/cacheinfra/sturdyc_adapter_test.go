package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Capacity:           100,
		NumShards:          4,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 5000 {
		t.Errorf("expected Capacity to be 5000, got %d", cfg.Capacity)
	}
	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}
	if cfg.TTL != 10*time.Minute {
		t.Errorf("expected TTL to be 10 minutes, got %v", cfg.TTL)
	}
	if cfg.EarlyRefresh == nil {
		t.Fatal("expected EarlyRefresh to be configured")
	}
	if cfg.EarlyRefresh.SyncRefreshTime >= cfg.TTL {
		t.Errorf("expected SyncRefreshTime below TTL, got %v", cfg.EarlyRefresh.SyncRefreshTime)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, field: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, field: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, field: "TTL"},
		{name: "eviction too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, field: "EvictionPercentage"},
		{name: "eviction zero", mutate: func(c *Config) { c.EvictionPercentage = 0 }, field: "EvictionPercentage"},
		{
			name: "refresh window inverted",
			mutate: func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: time.Minute, MaxAsyncRefreshTime: time.Second}
			},
			field: "EarlyRefresh.MaxAsyncRefreshTime",
		},
		{
			name: "negative retry delay",
			mutate: func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{RetryBaseDelay: -1}
			},
			field: "EarlyRefresh.RetryBaseDelay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cerr.Field)
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := testConfig()
	if n := len(cfg.ToSturdycOptions()); n != 0 {
		t.Errorf("expected no options, got %d", n)
	}

	cfg = DefaultConfig()
	cfg.MissingRecordStorage = true
	if n := len(cfg.ToSturdycOptions()); n != 3 {
		t.Errorf("expected 3 options, got %d", n)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	if got := err.Error(); got != "config error in field TTL: must be greater than 0" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestNewSturdycService_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = -1
	if _, err := NewSturdycService(cfg); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return "stem", nil
	}

	for i := 0; i < 3; i++ {
		v, err := svc.GetOrFetch(ctx, "categories::slug::stem", fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "stem" {
			t.Errorf("expected stem, got %v", v)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected one fetch, got %d", calls.Load())
	}

	if _, err := svc.GetOrFetch(ctx, "k", nil); err == nil {
		t.Error("expected error for nil fetch function")
	}
}

func TestSturdycService_GetOrFetch_ErrorsNotCached(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	boom := errors.New("boom")

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.GetOrFetch(ctx, "levels::slug::phd", fetch); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("expected two fetches, got %d", calls.Load())
	}
}

func TestSturdycService_DeleteByPrefix(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return 1, nil
	}
	keys := []string{"categories::slug::a", "categories::id::1", "countries::slug::a"}
	for _, k := range keys {
		if _, err := svc.GetOrFetch(ctx, k, fetch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := svc.DeleteByPrefix(ctx, "categories::"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, k := range svc.client.ScanKeys() {
		if strings.HasPrefix(k, "categories::") {
			t.Errorf("expected %s to be deleted", k)
		}
	}

	calls.Store(0)
	for _, k := range keys {
		_, _ = svc.GetOrFetch(ctx, k, fetch)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 refetches after prefix delete, got %d", calls.Load())
	}
}

func TestSturdycService_Delete(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return "x", nil
	}
	_, _ = svc.GetOrFetch(ctx, "k", fetch)
	if err := svc.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = svc.GetOrFetch(ctx, "k", fetch)
	if calls.Load() != 2 {
		t.Errorf("expected refetch after delete, got %d calls", calls.Load())
	}
}
