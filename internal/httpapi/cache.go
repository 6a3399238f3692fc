package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-scholarship-catalog/cache"
)

const (
	headerCache        = "X-Cache"
	headerCacheControl = "Cache-Control"
	degradedKey        = "catalog.degraded"
	contentTypeJSON    = "application/json; charset=utf-8"
)

type routeKind int

const (
	kindList routeKind = iota
	kindDetail
)

// responseCache serves GET responses from cache.ResponseCache. Only complete
// 200 responses are stored; concurrent misses on one key may all reach the
// handler and the last one stored wins.
type responseCache struct {
	cache *cache.ResponseCache
	ttl   cache.TTLPolicy
	keys  cache.KeySerializer
}

// recorder keeps a copy of the body written by the handler.
type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func (rc *responseCache) middleware(kind routeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		query := c.Request.URL.Query()
		ttl, control := rc.policy(kind, hasSearch(query))
		c.Header(headerCacheControl, control)

		if rc.cache == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rc.keys.SerializeKey(c.Request.Method, c.Request.URL.Path, query)
		if payload, ok := rc.cache.Get(ctx, key, ttl); ok {
			c.Header(headerCache, "HIT")
			c.Data(http.StatusOK, contentTypeJSON, payload)
			c.Abort()
			return
		}

		c.Header(headerCache, "MISS")
		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() != http.StatusOK || c.GetBool(degradedKey) || rec.body.Len() == 0 {
			return
		}
		rc.cache.Set(ctx, key, rec.body.Bytes())
	}
}

// policy returns the freshness window and the Cache-Control value for a
// route. Shared caches may keep lists twice as long as browsers.
func (rc *responseCache) policy(kind routeKind, search bool) (time.Duration, string) {
	if kind == kindDetail {
		ttl := rc.ttl.ForDetail()
		return ttl, cacheControl(ttl, ttl)
	}
	ttl := rc.ttl.ForList(search)
	return ttl, cacheControl(ttl, 2*ttl)
}

func cacheControl(maxAge, sMaxAge time.Duration) string {
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=59",
		int(maxAge.Seconds()), int(sMaxAge.Seconds()))
}

func hasSearch(q map[string][]string) bool {
	for _, name := range []string{"search", "q"} {
		for _, v := range q[name] {
			if strings.TrimSpace(v) != "" {
				return true
			}
		}
	}
	return false
}

// noStore marks the response as not cacheable at any layer.
func noStore(c *gin.Context) {
	c.Set(degradedKey, true)
	c.Header(headerCacheControl, "no-store")
}
