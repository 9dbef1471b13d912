package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-geomag/internal/domain"
	"github.com/couchcryptid/storm-data-geomag/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DeclinationTransformer implements Transformer by locating each event and
// evaluating the geomagnetic model at it.
type DeclinationTransformer struct {
	geocoder domain.Geocoder
	settings domain.DeclinationSettings
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a DeclinationTransformer. Pass a nil geocoder to
// drop events that arrive without coordinates.
func NewTransformer(settings domain.DeclinationSettings, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *DeclinationTransformer {
	return &DeclinationTransformer{
		geocoder: geocoder,
		settings: settings,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *DeclinationTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	ctx, span := observability.Tracer().Start(ctx, "pipeline.transform")
	defer span.End()

	obs, err := domain.ParseRawEvent(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse")
		return domain.OutputEvent{}, err
	}
	span.SetAttributes(attribute.String("event.id", obs.ID))

	obs = domain.EnrichWithGeocoding(ctx, obs, t.geocoder, t.logger)

	start := time.Now()
	event, err := domain.EnrichWithDeclination(obs, t.settings)
	t.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		t.metrics.Declinations.WithLabelValues("pipeline", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "declination")
		return domain.OutputEvent{}, err
	}
	t.metrics.RecordReport("pipeline", event.Report)

	span.SetAttributes(
		attribute.String("geomag.model", event.Model),
		attribute.String("geomag.advisory", event.Advisory.String()),
	)
	t.logger.Debug("declination computed",
		"event_id", event.ID,
		"lat", event.Geo.Lat,
		"lon", event.Geo.Lon,
		"declination", event.Declination.String(),
		"advisory", event.Advisory.String(),
	)

	return domain.Serialize(event)
}
