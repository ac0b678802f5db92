package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/shopfront/shopfront/internal/config"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an idle client's limiter is kept
const limiterIdleTTL = 10 * time.Minute

// RateLimitMiddleware limits requests per client IP with a token bucket.
// A non-positive requests_per_second disables it.
func RateLimitMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	rps := cfg.RateLimit.RequestsPerSecond
	if rps <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := max(cfg.RateLimit.Burst, 1)
	limiters := cache.New(limiterIdleTTL, 2*limiterIdleTTL)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		var limiter *rate.Limiter
		if v, ok := limiters.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			// Add keeps the limiter of a concurrent first request
			if err := limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
				if v, ok := limiters.Get(ip); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		// sliding expiry
		limiters.Set(ip, limiter, cache.DefaultExpiration)

		if !limiter.Allow() {
			_ = c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, please slow down").
				WithReportableDetails(map[string]any{
					"requests_per_second": rps,
				}).
				Mark(ierr.ErrRateLimited))
			c.Abort()
			return
		}

		c.Next()
	}
}
