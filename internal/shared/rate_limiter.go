package shared

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"taskapi/pkg/config"
)

// RateLimiter enforces per-path, per-client-IP request budgets backed by an
// expiring in-process cache.
type RateLimiter struct {
	cache   *cache.Cache
	configs map[string]config.RateLimitConfig
	metrics *AppMetrics
	mutex   sync.Mutex
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(configs map[string]config.RateLimitConfig, metrics *AppMetrics) *RateLimiter {
	if configs == nil {
		configs = config.GetDefaultConfig().RateLimitConfigs
	}

	return &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		configs: configs,
		metrics: metrics,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		limit, exists := rl.configs[path]

		if !exists {
			limit, exists = rl.configs["default"]

			if !exists {
				c.Next()
				return
			}
		}

		key := fmt.Sprintf("%s|%s", path, c.ClientIP())

		allowed, remaining, resetTime := rl.Allow(key, limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(path, "ip")
			}

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(path, "ip")
		}

		c.Next()
	}
}

// Allow reports whether a request under key fits the budget, along with the
// remaining quota and window reset time.
func (rl *RateLimiter) Allow(key string, limit config.RateLimitConfig) (bool, int, time.Time) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()

	var entry rateLimitEntry

	if cached, found := rl.cache.Get(key); found {
		entry = cached.(rateLimitEntry)
	}

	if entry.ResetTime.IsZero() || now.After(entry.ResetTime) {
		entry = rateLimitEntry{
			Count:     0,
			ResetTime: now.Add(limit.Window),
		}
	}

	if entry.Count >= limit.Requests {
		rl.cache.Set(key, entry, time.Until(entry.ResetTime))
		return false, 0, entry.ResetTime
	}

	entry.Count++
	rl.cache.Set(key, entry, time.Until(entry.ResetTime))

	return true, limit.Requests - entry.Count, entry.ResetTime
}
