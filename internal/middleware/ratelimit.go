package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client. Buckets of idle clients expire.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst
func NewRateLimiter(rps float64, burst, maxClients int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxClients, nil, idle),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether key may make a request now
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	limiter, ok := r.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
	}
	r.limiters.Add(key, limiter)
	r.mu.Unlock()

	return limiter.Allow()
}

// RateLimitMiddleware rejects requests over the per-client budget with 429.
// Clients are keyed by client id, falling back to the remote address.
func RateLimitMiddleware(limiter *RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(KeyClientID)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.Allow(key) {
			logger.Warn("rate limit exceeded",
				zap.String("client_id", key),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    "RateLimited",
				"message": "Too many requests. Please slow down and try again.",
			})
			return
		}

		c.Next()
	}
}
