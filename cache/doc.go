// Package cache provides the two caches of the catalog service.
//
// # Response cache
//
// ResponseCache stores serialized list and detail responses keyed by a
// request fingerprint:
//
//	key := cache.Fingerprint("GET", "/api/Scholarships/", r.URL.Query())
//	// GET:/api/scholarships?limit=5&page=2&search=engineering
//
// Freshness is checked on read against the TTL the caller passes, taken from
// a TTLPolicy (30 minutes for plain lists, 5 minutes when a search term is
// present, 1 hour for detail pages). Entries are never invalidated by
// writes; they age out. The store behind the cache is either an in-process
// map (NewMemoryStore) or Redis (NewRedisStore), where bodies are encoded
// with msgpack under an xxhash of the fingerprint.
//
// # Lookup cache
//
// CacheService is a read-through cache with per-key request coalescing,
// backed by sturdyc. It fronts single-record reads such as slug to id
// resolution:
//
//	cat, err := cache.GetOrFetch(ctx, svc, cache.LookupKey("categories", "slug", "stem"),
//		func(ctx context.Context) (store.Row, error) {
//			return st.FindOne(ctx, "categories", "slug", "stem")
//		})
//
// Writers drop every lookup of a table with DeleteByPrefix(TablePrefix(table)).
//
// # Error Handling
//
// Fetch errors are returned to the caller and never cached. Response store
// failures are logged and treated as misses so a broken backend slows
// requests down without failing them.
package cache
