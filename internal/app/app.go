package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/config"
	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/middleware"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine     *gin.Engine
	db         *gorm.DB
	logger     *logger.Logger
	cfg        *config.Config
	components *components
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, writeTimeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, the domain modules, middleware and
// routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	// 2. Setup database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := config.CloseDatabase(db); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. Migrate when asked to, and always in debug mode.
	if cfg.Database.AutoMigrate || cfg.Server.Mode == gin.DebugMode {
		if err := config.Migrate(db, log.Logger, domain.Models()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	// 4. Wire the domain modules.
	comps, err := build(context.Background(), cfg, db, log.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if success {
			return
		}
		for _, err := range comps.close() {
			slog.Error("component close error", slog.Any("error", err))
		}
	}()

	// 5. Create the Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	handlers := []gin.HandlerFunc{
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
	}
	if comps.metrics != nil {
		handlers = append(handlers, comps.metrics.Middleware())
	}
	if cfg.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.Server.RateLimit.RPS,
			Burst:             cfg.Server.RateLimit.Burst,
			IdleTTL:           config.Duration(cfg.Server.RateLimit.IdleTTL, 10*time.Minute),
		})
		handlers = append(handlers, limiter.RateLimit())
	}
	handlers = append(handlers, middleware.Authenticate(comps.auth))
	engine.Use(handlers...)

	// 6. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:   comps.modules,
		DB:        db,
		Metrics:   comps.metrics,
		UploadDir: comps.files.Dir(),
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:     engine,
		db:         db,
		logger:     log,
		cfg:        cfg,
		components: comps,
	}, nil
}

// Handler returns the HTTP handler serving the application.
func (a *App) Handler() http.Handler {
	return a.engine
}

func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()
	if cfg == nil {
		return corsConfig
	}

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	if cfg.MaxAge != "" {
		corsConfig.MaxAge = int(config.Duration(cfg.MaxAge, 24*time.Hour).Seconds())
	}
	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It shuts down gracefully within 5 seconds, then releases the event sink,
// the database and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, config.Duration(a.cfg.Server.Timeout, 60*time.Second))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log().Error("server shutdown error", slog.Any("error", err))
		}
	}

	a.close()
	return runErr
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}

// close releases the components, the database and the logger.
func (a *App) close() {
	if a.components != nil {
		for _, err := range a.components.close() {
			a.log().Error("component close error", slog.Any("error", err))
		}
	}
	if a.db != nil {
		if err := config.CloseDatabase(a.db); err != nil {
			a.log().Error("database close error", slog.Any("error", err))
		} else {
			a.log().Info("database connection closed")
		}
	}
	a.log().Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
}
