package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"taskapi/internal/adapter/database/postgres"
	pgrepo "taskapi/internal/adapter/database/postgres/repository"
	"taskapi/internal/adapter/database/sqlite"
	sqliterepo "taskapi/internal/adapter/database/sqlite/repository"
	"taskapi/internal/adapter/http/routes"
	"taskapi/internal/core/port"
	"taskapi/internal/core/telemetry"
	"taskapi/internal/shared"
	"taskapi/pkg/config"
)

func StartServer(ctx context.Context, metrics *shared.AppMetrics, logger *shared.AppLogger) {
	StartServerWithConfig(ctx, metrics, logger, config.GetDefaultConfig())
}

// StartServerWithConfig serves until ctx is cancelled, then drains in-flight
// requests before returning.
func StartServerWithConfig(ctx context.Context, metrics *shared.AppMetrics, logger *shared.AppLogger, appConfig *config.AppConfig) {
	probe := telemetry.NewOTELProbe(slog.Default())

	var taskRepo port.TaskRepository
	var ping func() error

	if os.Getenv("DATABASE_URL") != "" {
		db, err := postgres.NewDB(ctx)

		if err != nil {
			slog.Error("Failed to connect to postgres", "error", err)
			os.Exit(1)
		}

		defer db.Close()

		taskRepo = pgrepo.NewTaskRepository(db, probe)
		ping = func() error { return db.Ping(context.Background()) }
	} else {
		db, err := sqlite.NewDB()

		if err != nil {
			slog.Error("Failed to open sqlite database", "error", err)
			os.Exit(1)
		}

		defer db.Close()

		taskRepo = sqliterepo.NewTaskRepository(db, probe)
		ping = db.Ping
	}

	container := NewContainer(taskRepo, logger)

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		TaskHandler: container.TaskHandler,
		Ping:        ping,
	}, metrics, logger, appConfig)

	serverPort := config.GetServerPort()

	slog.Info("Server starting",
		"port", serverPort,
		"environment", appConfig.Environment,
		"rate_limit_enabled", appConfig.RateLimitEnabled,
		"cache_enabled", appConfig.CacheEnabled)

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	if err := serveUntilShutdown(ctx, srv); err != nil {
		slog.Error("Server failed", "error", err)
	}
}

func serveUntilShutdown(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}
