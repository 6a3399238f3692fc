package cache

import (
	"context"
	"errors"
	"testing"
)

// mockCacheService calls through when result and err are both unset.
type mockCacheService struct {
	result  any
	err     error
	through bool
}

func (m *mockCacheService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if m.through {
		return fetchFn(ctx)
	}
	return m.result, m.err
}

func (m *mockCacheService) Delete(ctx context.Context, key string) error {
	return nil
}

func (m *mockCacheService) DeleteByPrefix(ctx context.Context, prefix string) error {
	return nil
}

func TestGetOrFetch_NilResult(t *testing.T) {
	type Named interface{ Name() string }

	result, err := GetOrFetch[Named](context.Background(), &mockCacheService{}, "k", func(ctx context.Context) (Named, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestGetOrFetch_TypeMismatch(t *testing.T) {
	mock := &mockCacheService{result: 42}

	_, err := GetOrFetch[string](context.Background(), mock, "k", func(ctx context.Context) (string, error) {
		return "", nil
	})
	if err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestGetOrFetch_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	mock := &mockCacheService{through: true}

	_, err := GetOrFetch[int](context.Background(), mock, "k", func(ctx context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestGetOrFetch_SturdycService(t *testing.T) {
	svc, err := NewCacheService(DefaultLookupConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "stem", nil
	}
	for i := 0; i < 2; i++ {
		got, err := GetOrFetch(context.Background(), svc, LookupKey("categories", "slug", "stem"), fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "stem" {
			t.Errorf("expected stem, got %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected one fetch, got %d", calls)
	}
}

func TestLookupConfig_Validate(t *testing.T) {
	if err := DefaultLookupConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	cfg := DefaultLookupConfig()
	cfg.TTL = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero TTL")
	}
}
