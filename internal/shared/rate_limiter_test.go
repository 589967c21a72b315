package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"taskapi/pkg/config"
)

func limiterWith(requests int, window time.Duration) *RateLimiter {
	return NewRateLimiter(map[string]config.RateLimitConfig{
		"/tasks/": {Requests: requests, Window: window},
	}, nil)
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	RegisterTestingT(t)

	limiter := limiterWith(3, time.Minute)
	limit := config.RateLimitConfig{Requests: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := limiter.Allow("client", limit)

		Expect(allowed).To(BeTrue())
		Expect(remaining).To(Equal(2 - i))
	}

	allowed, remaining, _ := limiter.Allow("client", limit)

	Expect(allowed).To(BeFalse())
	Expect(remaining).To(Equal(0))
}

func TestRateLimiterTracksKeysIndependently(t *testing.T) {
	RegisterTestingT(t)

	limiter := limiterWith(1, time.Minute)
	limit := config.RateLimitConfig{Requests: 1, Window: time.Minute}

	allowed, _, _ := limiter.Allow("first", limit)
	Expect(allowed).To(BeTrue())

	allowed, _, _ = limiter.Allow("first", limit)
	Expect(allowed).To(BeFalse())

	allowed, _, _ = limiter.Allow("second", limit)
	Expect(allowed).To(BeTrue())
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	RegisterTestingT(t)

	limiter := limiterWith(1, 10*time.Millisecond)
	limit := config.RateLimitConfig{Requests: 1, Window: 10 * time.Millisecond}

	allowed, _, _ := limiter.Allow("client", limit)
	Expect(allowed).To(BeTrue())

	allowed, _, _ = limiter.Allow("client", limit)
	Expect(allowed).To(BeFalse())

	time.Sleep(20 * time.Millisecond)

	allowed, _, _ = limiter.Allow("client", limit)
	Expect(allowed).To(BeTrue())
}

func TestRateLimiterMiddlewareSetsHeadersAndBlocks(t *testing.T) {
	RegisterTestingT(t)

	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(limiterWith(2, time.Minute).Middleware())
	router.GET("/tasks/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	var last *httptest.ResponseRecorder

	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
		router.ServeHTTP(last, req)
	}

	Expect(last.Code).To(Equal(http.StatusTooManyRequests))
	Expect(last.Header().Get("X-RateLimit-Limit")).To(Equal("2"))
	Expect(last.Header().Get("X-RateLimit-Remaining")).To(Equal("0"))
}

func TestRateLimiterSkipsUnconfiguredPaths(t *testing.T) {
	RegisterTestingT(t)

	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(limiterWith(1, time.Minute).Middleware())
	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
	}
}
