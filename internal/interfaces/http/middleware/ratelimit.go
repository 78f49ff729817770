package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is counted against
type KeyFunc func(c *gin.Context) string

// KeyByIP counts requests per client address
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// KeyByUserOrIP counts authenticated requests per user and the rest per address
func KeyByUserOrIP(c *gin.Context) string {
	if id := c.GetString(JWTUserIDKey); id != "" {
		return "user:" + id
	}
	return KeyByIP(c)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewRateLimiter allows rps requests per second per key with the given burst
func NewRateLimiter(rps float64, burst int, logger *zap.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		logger:   logger,
		now:      time.Now,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint
func (rl *RateLimiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.get(key(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))

		if !limiter.AllowN(rl.now(), 1) {
			retry := 1
			if rl.limit > 0 {
				retry = int(math.Ceil(1 / float64(rl.limit)))
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Header("X-RateLimit-Remaining", "0")
			rl.logger.Warn("Rate limit exceeded",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			abort(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, "Too many requests, please slow down")
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.TokensAt(rl.now()))))
		c.Next()
	}
}

// Cleanup drops buckets idle for longer than the idle TTL
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Run cleans up idle buckets every interval until ctx is done
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}
