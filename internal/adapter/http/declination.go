package http

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
	"github.com/couchcryptid/storm-data-geomag/internal/observability"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DeclinationAPI serves GET /v1/declination against one coefficient file.
type DeclinationAPI struct {
	modelFile string
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewDeclinationAPI creates the handler. The clock supplies the date when a
// request omits one.
func NewDeclinationAPI(modelFile string, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *DeclinationAPI {
	return &DeclinationAPI{
		modelFile: modelFile,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// DeclinationResponse is the body of a successful lookup.
type DeclinationResponse struct {
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	AltitudeKm float64 `json:"altitude_km"`
	System     string  `json:"system"`

	geomag.Report

	Correction geomag.Value `json:"correction"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *DeclinationAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := observability.Tracer().Start(r.Context(), "http.declination")
	defer span.End()

	q, err := a.parseQuery(r.URL.Query())
	if err != nil {
		span.SetStatus(codes.Error, "bad request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	span.SetAttributes(
		attribute.Float64("geomag.lat", q.Latitude),
		attribute.Float64("geomag.lon", q.Longitude),
		attribute.Float64("geomag.date", q.Date),
	)

	start := time.Now()
	rep, err := geomag.Compute(a.modelFile, q)
	a.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		a.metrics.Declinations.WithLabelValues("http", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute")
		a.logger.ErrorContext(ctx, "declination lookup failed", "error", err, "lat", q.Latitude, "lon", q.Longitude)
		msg := "model evaluation failed"
		if errors.Is(err, geomag.ErrResourceUnavailable) {
			msg = "model file unavailable"
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
		return
	}
	a.metrics.RecordReport("http", rep)
	span.SetAttributes(attribute.String("geomag.advisory", rep.Advisory.String()))

	writeJSON(w, http.StatusOK, DeclinationResponse{
		Latitude:   q.Latitude,
		Longitude:  q.Longitude,
		AltitudeKm: q.AltitudeKm,
		System:     q.System.String(),
		Report:     rep,
		Correction: rep.Correction(),
	})
}

func (a *DeclinationAPI) parseQuery(v url.Values) (geomag.Query, error) {
	lat, err := requiredFloat(v, "lat")
	if err != nil {
		return geomag.Query{}, err
	}
	if lat < -90 || lat > 90 {
		return geomag.Query{}, fmt.Errorf("lat %g out of range [-90, 90]", lat)
	}
	lon, err := requiredFloat(v, "lon")
	if err != nil {
		return geomag.Query{}, err
	}
	if lon < -180 || lon > 180 {
		return geomag.Query{}, fmt.Errorf("lon %g out of range [-180, 180]", lon)
	}

	var alt float64
	if v.Get("alt") != "" {
		alt, err = requiredFloat(v, "alt")
		if err != nil {
			return geomag.Query{}, err
		}
	}

	date := geomag.DecimalYear(a.clock.Now())
	if s := v.Get("date"); s != "" {
		date, err = geomag.ParseDate(s)
		if err != nil {
			return geomag.Query{}, err
		}
	}

	system, err := geomag.ParseCoordinateSystem(v.Get("system"))
	if err != nil {
		return geomag.Query{}, err
	}

	return geomag.Query{
		Latitude:   lat,
		Longitude:  lon,
		AltitudeKm: alt,
		Date:       date,
		System:     system,
	}, nil
}

func requiredFloat(v url.Values, name string) (float64, error) {
	s := v.Get(name)
	if s == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return f, nil
}
