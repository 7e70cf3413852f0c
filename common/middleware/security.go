package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/xtopay/checkout-backend/common/errors"
	"github.com/xtopay/checkout-backend/common/logger"
)

// SecurityHeaders adds security-related headers to all responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		// JSON only, nothing to load.
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	ips   map[string]*limiterEntry
	mu    sync.Mutex
	rate  rate.Limit
	burst int
	ttl   time.Duration
}

// NewRateLimiter creates a limiter whose idle entries are evicted after ttl.
// The eviction loop stops when ctx is done.
func NewRateLimiter(ctx context.Context, r rate.Limit, b int, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		ips:   make(map[string]*limiterEntry),
		rate:  r,
		burst: b,
		ttl:   ttl,
	}

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.evict(now)
			}
		}
	}()

	return rl
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, e := range rl.ips {
		if now.Sub(e.lastSeen) > rl.ttl {
			delete(rl.ips, ip)
		}
	}
}

// GetLimiter returns the rate limiter for the given IP
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// Middleware rejects requests over the per-IP budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.GetLimiter(c.ClientIP()).Allow() {
			apperrors.Respond(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware allows 100 requests per minute per IP with a burst of 50.
func RateLimitMiddleware(ctx context.Context) gin.HandlerFunc {
	return NewRateLimiter(ctx, rate.Every(time.Minute/100), 50, 5*time.Minute).Middleware()
}

// ParseOrigins splits a comma separated ALLOWED_ORIGINS value. An empty
// value yields the local frontend origins.
func ParseOrigins(v string) []string {
	if strings.TrimSpace(v) == "" {
		return []string{"http://localhost:3000", "http://localhost:3001"}
	}
	var allowed []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(o), "/")); o != "" {
			allowed = append(allowed, o)
		}
	}
	return allowed
}

// CORSMiddleware allows the given origins; a single "*" allows any.
// Disallowed origins get the error envelope; requests without an Origin
// header pass through untouched.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowOrigin := func(string) bool { return true }
	if len(allowed) == 1 && allowed[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		set := make(map[string]struct{}, len(allowed))
		for _, a := range allowed {
			set[a] = struct{}{}
		}
		allowOrigin = func(origin string) bool {
			_, ok := set[strings.TrimSuffix(origin, "/")]
			return ok
		}
		cfg.AllowOriginFunc = allowOrigin
	}
	handler := cors.New(cfg)

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && !allowOrigin(origin) {
			apperrors.Respond(c, apperrors.ErrOriginNotAllowed)
			return
		}
		handler(c)
	}
}

// Timeout bounds the request context so datastore calls are cancelled.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
