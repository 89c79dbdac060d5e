package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/sensor-map-dashboard/internal/adapter/api"
	"github.com/couchcryptid/sensor-map-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/sensor-map-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/sensor-map-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/sensor-map-dashboard/internal/config"
	"github.com/couchcryptid/sensor-map-dashboard/internal/dashboard"
	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/observability"
	"github.com/couchcryptid/sensor-map-dashboard/internal/pipeline"
	"github.com/couchcryptid/sensor-map-dashboard/internal/source"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reference := cfg.TimelineReference
	if reference.IsZero() {
		reference = domain.Now()
	}
	grid := timeline.NewGrid(reference, cfg.TimelineDaysBefore, cfg.TimelineDaysAfter)

	loader, err := source.New(source.Options{
		Kind:       cfg.DataSource,
		SQLitePath: cfg.SQLitePath,
		MockPoints: cfg.MockPoints,
		MockSeed:   cfg.MockSeed,
		Timestamps: grid.Timestamps(),
	})
	if err != nil {
		logger.Error("failed to create data source", "error", err)
		os.Exit(1)
	}
	ds, err := loader.Load(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}

	// Publish change events to Kafka (feature-flagged via KAFKA_ENABLED).
	var (
		notifier dashboard.Notifier = dashboard.NopNotifier{}
		writer   *kafkaadapter.Writer
		relay    *pipeline.Relay
		ready    = []sharedobs.ReadinessChecker{}
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		relay = pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval, cfg.EventQueueSize)
		notifier = relay
		ready = append(ready, relay)
		metrics.KafkaEnabled.Set(1)
		logger.Info("change event publishing enabled", "topic", cfg.KafkaEventsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("change event publishing disabled")
	}

	session := dashboard.New(ds, dashboard.Options{
		Reference:       reference,
		DaysBefore:      cfg.TimelineDaysBefore,
		DaysAfter:       cfg.TimelineDaysAfter,
		DefaultVariable: cfg.DefaultVariable,
		Mode:            timeline.ModeRange,
	}, notifier, logger, metrics)
	ready = append(ready, session)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	renderer := chart.NewRenderer(metrics, reference.Location())
	router := api.NewRouter(api.NewHandler(session, renderer, logger))

	srv := httpadapter.NewServer(cfg.HTTPAddr, router, logger, ready...)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start event relay.
	if relay != nil {
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("relay error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
