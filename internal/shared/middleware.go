package shared

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"taskapi/pkg/config"
)

func MetricsMiddleware(metrics *AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections()
		defer metrics.DecrementActiveConnections()

		c.Next()

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			c.FullPath(),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

func SetupGinMiddleware(router *gin.Engine, serviceName string, metrics *AppMetrics, logger *AppLogger, appConfig *config.AppConfig) {
	router.Use(otelgin.Middleware(serviceName))

	if logger != nil {
		router.Use(LoggingMiddleware(logger))
	}

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	if appConfig != nil && appConfig.RateLimitEnabled {
		limiter := NewRateLimiter(appConfig.RateLimitConfigs, metrics)
		router.Use(limiter.Middleware())
	}

	if appConfig != nil && appConfig.CacheEnabled {
		responseCache := NewResponseCache(appConfig.CacheConfigs, metrics)
		router.Use(responseCache.Middleware())
	}
}
