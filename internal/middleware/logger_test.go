package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/colocmatching/internal/security"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupLoggerRouter(log *slog.Logger, requestID gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(requestID)
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Actor") != "" {
			c.Request = c.Request.WithContext(security.WithActor(c.Request.Context(), &security.Actor{ID: 42}))
		}
		c.Next()
	})
	r.Use(Logger(log))

	r.GET("/groups/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/not-found", func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})
	r.GET("/error", func(c *gin.Context) {
		_ = c.Error(errors.New("database unreachable"))
		c.String(http.StatusInternalServerError, "error")
	})
	return r
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		path  string
		level string
	}{
		{"/groups/1", "level=INFO"},
		{"/not-found", "level=WARN"},
		{"/error", "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var logBuf bytes.Buffer
			doGet(setupLoggerRouter(newTestLogger(&logBuf), RequestID()), tt.path, nil)

			if out := logBuf.String(); !strings.Contains(out, tt.level) {
				t.Errorf("expected %s, got:\n%s", tt.level, out)
			}
		})
	}
}

func TestLogger_ContainsExpectedFields(t *testing.T) {
	var logBuf bytes.Buffer
	doGet(setupLoggerRouter(newTestLogger(&logBuf), RequestID()), "/groups/7", map[string]string{"X-Test-Actor": "1"})

	out := logBuf.String()
	for _, field := range []string{"method=GET", "route=/groups/:id", "path=/groups/7", "status=200", "latency=", "client_ip=", "actor_id=42"} {
		if !strings.Contains(out, field) {
			t.Errorf("expected log to contain %q, got:\n%s", field, out)
		}
	}
}

func TestLogger_IncludesErrorOn5xx(t *testing.T) {
	var logBuf bytes.Buffer
	doGet(setupLoggerRouter(newTestLogger(&logBuf), RequestID()), "/error", nil)

	if out := logBuf.String(); !strings.Contains(out, "database unreachable") {
		t.Errorf("expected handler error in log, got:\n%s", out)
	}
}

func TestLogger_IncludesRequestIDFromContext(t *testing.T) {
	var logBuf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&logBuf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithLevel(slog.LevelDebug),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	if err != nil {
		t.Fatalf("logger.New error: %v", err)
	}
	defer log.Close()

	r := setupLoggerRouter(log.Logger, RequestIDWithConfig(RequestIDConfig{TrustUpstream: true}))
	doGet(r, "/groups/1", map[string]string{requestIDHeader: "test-req-id-789"})

	if out := logBuf.String(); !strings.Contains(out, "test-req-id-789") {
		t.Errorf("expected log to contain request_id 'test-req-id-789', got:\n%s", out)
	}
}
