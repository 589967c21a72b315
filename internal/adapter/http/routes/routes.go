package routes

import (
	"net/http"

	"taskapi/internal/adapter/http/handler"
	"taskapi/internal/adapter/http/middleware"
	"taskapi/internal/shared"
	"taskapi/pkg/config"

	"github.com/gin-gonic/gin"
)

type HandlersConfig struct {
	TaskHandler *handler.TaskHandler

	// Ping reports store reachability for the health endpoint.
	Ping func() error
}

func SetupRouter(handlers HandlersConfig, metrics *shared.AppMetrics, logger *shared.AppLogger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *shared.AppMetrics, logger *shared.AppLogger, appConfig *config.AppConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	shared.SetupGinMiddleware(router, "taskapi", metrics, logger, appConfig)

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.CurrentMiddleware())

	setupTaskRoutes(router, handlers.TaskHandler)
	setupHealthRoutes(router, handlers.Ping)

	return router
}

// SetupRouterForTests wires routes without telemetry, rate limiting, or
// response caching.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.CurrentMiddleware())

	setupTaskRoutes(router, handlers.TaskHandler)
	setupHealthRoutes(router, handlers.Ping)

	return router
}

func setupTaskRoutes(router *gin.Engine, taskHandler *handler.TaskHandler) {
	if taskHandler == nil {
		return
	}

	tasks := router.Group("/")
	{
		tasks.POST("/tasks/", taskHandler.CreateTask)
		tasks.GET("/tasks/", taskHandler.ListTasks)
		tasks.GET("/tasks/:id/", taskHandler.GetTask)
		tasks.PUT("/tasks/:id/", taskHandler.UpdateTask)
		tasks.DELETE("/tasks/:id/", taskHandler.DeleteTask)
	}
}

func setupHealthRoutes(router *gin.Engine, ping func() error) {
	router.GET("/healthz", func(c *gin.Context) {
		if ping != nil {
			if err := ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
