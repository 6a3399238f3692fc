// Package storecache decorates a store.Store with a read-through lookup
// cache for single-record reads.
//
// FindOne results are cached under "table::field::value" in a
// cache.CacheService. List reads (Count, Select, SelectAndCount) always reach
// the base store; their results are cached one level up as whole responses.
// A successful write through the decorator drops every cached lookup of the
// written table.
//
//	cached := storecache.New(base, lookups)
//	builder := query.NewBuilder(cached) // slug resolution goes through the cache
//
// The decorator also implements query.Resolver, so filter slugs such as
// category=stem resolve to ids through the same cache.
package storecache
