package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-data-geomag/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-data-geomag/internal/adapter/kafka"
	"github.com/couchcryptid/storm-data-geomag/internal/adapter/mapbox"
	"github.com/couchcryptid/storm-data-geomag/internal/config"
	"github.com/couchcryptid/storm-data-geomag/internal/domain"
	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
	"github.com/couchcryptid/storm-data-geomag/internal/observability"
	"github.com/couchcryptid/storm-data-geomag/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fail fast on a missing or malformed model file rather than on the first event.
	cat, err := geomag.LoadCatalogFile(cfg.ModelFile)
	if err != nil {
		return err
	}
	logger.Info("model file loaded",
		"path", cfg.ModelFile,
		"models", len(cat.Models),
		"min_year", cat.MinYear,
		"max_year", cat.MaxYear,
	)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: "storm-data-geomag",
		Exporter:    cfg.TracingExporter,
		Endpoint:    cfg.TracingEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
	}, logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownTracing(context.Background(), shutdownTracing, logger)

	metrics := observability.NewMetrics()

	// Geocoding of unlocated events is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	settings := domain.DeclinationSettings{
		ModelFile:  cfg.ModelFile,
		AltitudeKm: cfg.AltitudeKm,
		FixedDate:  cfg.FixedDate,
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(settings, geocoder, logger, metrics)
	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	api := httpadapter.NewDeclinationAPI(cfg.ModelFile, clockwork.NewRealClock(), metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, api, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return p.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()

	if cerr := reader.Close(); cerr != nil {
		logger.Error("kafka reader close error", "error", cerr)
	}
	if cerr := writer.Close(); cerr != nil {
		logger.Error("kafka writer close error", "error", cerr)
	}
	logger.Info("shutdown complete")
	return err
}
