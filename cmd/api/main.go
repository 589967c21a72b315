package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "taskapi/internal/adapter/http"
	"taskapi/internal/shared"
	"taskapi/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := shared.NewAppLogger("taskapi", os.Getenv("LOKI_URL"))

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	otlpEndpoint := os.Getenv("OTLP_ENDPOINT")

	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	telemetry, err := shared.InitTelemetry(shared.TelemetryConfig{
		ServiceName:    "taskapi",
		ServiceVersion: "1.0.0",
		MetricsPort:    "9091",
		OTLPEndpoint:   otlpEndpoint,
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer telemetry.Shutdown(context.Background())

	metrics := shared.NewAppMetrics(telemetry.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	appConfig := config.GetDefaultConfig()

	if os.Getenv("GIN_MODE") == "release" {
		appConfig.Environment = "production"
	}

	api.StartServerWithConfig(ctx, metrics, logger, appConfig)

	logger.Logger.Info("Shut down gracefully")
}
