package cache

import "time"

// TTLPolicy decides how long a response stays fresh.
type TTLPolicy struct {
	Default time.Duration `yaml:"default" env:"CACHE_TTL_DEFAULT" env-default:"30s"`
	List    time.Duration `yaml:"list" env:"CACHE_TTL_LIST" env-default:"30m"`
	Search  time.Duration `yaml:"search" env:"CACHE_TTL_SEARCH" env-default:"5m"`
	Detail  time.Duration `yaml:"detail" env:"CACHE_TTL_DETAIL" env-default:"1h"`
}

// DefaultTTLPolicy returns the standard freshness windows.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Default: 30 * time.Second,
		List:    30 * time.Minute,
		Search:  5 * time.Minute,
		Detail:  time.Hour,
	}
}

// ForList returns the TTL for a list response. Searches go stale sooner.
func (p TTLPolicy) ForList(hasSearch bool) time.Duration {
	if hasSearch {
		return or(p.Search, p.Default)
	}
	return or(p.List, p.Default)
}

// ForDetail returns the TTL for a single-record response.
func (p TTLPolicy) ForDetail() time.Duration {
	return or(p.Detail, p.Default)
}

// Longest is the largest configured TTL; remote backends expire entries
// after it.
func (p TTLPolicy) Longest() time.Duration {
	longest := p.Default
	for _, d := range []time.Duration{p.List, p.Search, p.Detail} {
		if d > longest {
			longest = d
		}
	}
	return longest
}

func or(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
