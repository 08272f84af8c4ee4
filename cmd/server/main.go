package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cattlecomfort/thi-service/internal/adapter/chart"
	httpadapter "github.com/cattlecomfort/thi-service/internal/adapter/http"
	kafkaadapter "github.com/cattlecomfort/thi-service/internal/adapter/kafka"
	"github.com/cattlecomfort/thi-service/internal/adapter/power"
	"github.com/cattlecomfort/thi-service/internal/adapter/report"
	"github.com/cattlecomfort/thi-service/internal/assessment"
	"github.com/cattlecomfort/thi-service/internal/config"
	"github.com/cattlecomfort/thi-service/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := power.NewClient(cfg.PowerBaseURL, cfg.PowerTimeout, metrics, logger)
	fetcher := power.NewCachedFetcher(client, cfg.PowerCacheSize, metrics)

	// Event publishing is feature-flagged via KAFKA_ENABLED.
	var publisher assessment.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		publisher = kafkaPublisher
		metrics.PublisherEnabled.Set(1)
		logger.Info("assessment event publishing enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("assessment event publishing disabled")
	}

	svc := assessment.New(fetcher, chart.NewRenderer(), report.NewExporter(),
		publisher, cfg.DataLagDays, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
