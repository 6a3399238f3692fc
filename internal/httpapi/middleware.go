package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
	"github.com/goliatone/go-scholarship-catalog/internal/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID assigns every request an id, taken from X-Request-ID when the
// caller sent one, and stores a logger carrying it in the request context.
func RequestID(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(headerRequestID, rid)

		ctx := logctx.Into(c.Request.Context(), base.With(slog.String("request_id", rid)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logctx.From(c.Request.Context()).Log(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("cache", c.Writer.Header().Get(headerCache)),
			slog.String("ip", c.ClientIP()),
		)
	}
}

// Metrics records request latency by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Request(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func recovered(c *gin.Context, err any) {
	logctx.From(c.Request.Context()).Error("panic recovered",
		slog.String("path", c.Request.URL.Path),
		slog.Any("panic", err),
	)
	respondStatus(c, http.StatusInternalServerError, "internal", "internal server error")
}
