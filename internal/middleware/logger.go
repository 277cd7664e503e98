package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/security"
)

// Logger returns a gin middleware that logs each HTTP request using the provided
// slog.Logger: method, route template, path, status, latency, client IP, the
// authenticated actor and any error attached by handlers.
//
// The log level follows the status code: 5xx Error, 4xx Warn, otherwise Info.
// Context-aware logging lets the ContextHandler attach the request_id.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if actor := security.ActorFrom(c.Request.Context()); actor != nil {
			attrs = append(attrs, slog.Uint64("actor_id", uint64(actor.ID)))
		}
		if err := c.Errors.Last(); err != nil && status >= 500 {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.LogAttrs(ctx, slog.LevelError, "request", attrs...)
		case status >= 400:
			logger.LogAttrs(ctx, slog.LevelWarn, "request", attrs...)
		default:
			logger.LogAttrs(ctx, slog.LevelInfo, "request", attrs...)
		}
	}
}
