package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/metrics"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Metrics
	// UploadDir is served under /uploads; empty disables it.
	UploadDir string
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.DB))
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}
	if strings.TrimSpace(deps.UploadDir) != "" {
		r.GET("/uploads/:name", uploadHandler(deps.UploadDir))
	}

	api := r.Group("/rest")
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.NoRoute(noRouteHandler())
	r.NoMethod(noMethodHandler())
	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if err := ping(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("no database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// uploadHandler serves stored pictures by file name. Names never contain a
// path separator.
func uploadHandler(dir string) gin.HandlerFunc {
	fs := http.Dir(dir)
	return func(c *gin.Context) {
		name := c.Param("name")
		if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
			notFound(c)
			return
		}
		f, err := fs.Open("/" + name)
		if err != nil {
			notFound(c)
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			notFound(c)
			return
		}
		c.Header("Cache-Control", "public, max-age=86400")
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	}
}
