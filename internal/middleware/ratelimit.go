package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/simp-lee/colocmatching/internal/pkg"
)

// RateLimiterConfig sets the per-client token bucket.
type RateLimiterConfig struct {
	// RequestsPerSecond is the sustained rate; zero or less disables limiting.
	RequestsPerSecond float64
	Burst             int
	// IdleTTL is how long an idle client's bucket is kept.
	IdleTTL time.Duration
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimiter creates a limiter; buckets idle for cfg.IdleTTL are evicted.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{cfg: cfg, limiters: cache.New(cfg.IdleTTL, 2*cfg.IdleTTL)}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, found := rl.limiters.Get(key); found {
		rl.limiters.SetDefault(key, l)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	rl.limiters.SetDefault(key, l)
	return l
}

// Allow reports whether the client identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.cfg.RequestsPerSecond <= 0 {
		return true
	}
	return rl.limiter(key).Allow()
}

// RateLimit returns a gin middleware answering 429 once a client exhausts its bucket.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, pkg.ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
