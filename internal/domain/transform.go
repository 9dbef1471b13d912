package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
)

var (
	// ErrInvalidCoordinates marks an event whose latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	// ErrNoLocation marks an event that has no coordinates after geocoding.
	ErrNoLocation = errors.New("event has no coordinates")
)

// DeclinationSettings are applied to every event.
type DeclinationSettings struct {
	ModelFile string
	// AltitudeKm is used when the event carries no altitude.
	AltitudeKm float64
	// FixedDate, when non-nil, overrides the event time.
	FixedDate *float64
}

// ParseRawEvent deserializes a RawEvent's value into an Observation.
func ParseRawEvent(raw RawEvent) (Observation, error) {
	var rec LocationRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Observation{}, fmt.Errorf("parse raw event: %w", err)
	}

	if rec.Geo.Lat < -90 || rec.Geo.Lat > 90 || rec.Geo.Lon < -180 || rec.Geo.Lon > 180 {
		return Observation{}, fmt.Errorf("%w: lat %g lon %g", ErrInvalidCoordinates, rec.Geo.Lat, rec.Geo.Lon)
	}

	eventTime := rec.EventTime
	if eventTime.IsZero() {
		eventTime = rec.BeginTime
	}

	id := rec.ID
	if id == "" {
		id = string(raw.Key)
	}
	if id == "" {
		id = generateID(rec.Geo, eventTime, rec.Location)
	}

	return Observation{
		ID:         id,
		Geo:        rec.Geo,
		AltitudeKm: rec.AltitudeKm,
		EventTime:  eventTime,
		Location:   Location{Name: strings.TrimSpace(rec.Location.Name), State: rec.Location.State, County: rec.Location.County},
		RawPayload: raw.Value,
	}, nil
}

// generateID produces a deterministic ID from the event's position, time and
// place so reprocessing the same payload yields the same key.
func generateID(g Geo, t time.Time, loc Location) string {
	input := fmt.Sprintf("%.4f|%.4f|%s|%s|%s", g.Lat, g.Lon, t.UTC().Format(time.RFC3339), loc.Name, loc.State)
	hash := sha256.Sum256([]byte(input))
	return "geomag-" + hex.EncodeToString(hash[:8])
}

// TargetDate picks the decimal year at which the model is evaluated for obs.
func TargetDate(obs Observation, fixed *float64) float64 {
	if fixed != nil {
		return *fixed
	}
	if !obs.EventTime.IsZero() {
		return geomag.DecimalYear(obs.EventTime)
	}
	return geomag.DecimalYear(clock.Now())
}

// EnrichWithDeclination evaluates the model at the observation and builds
// the sink record.
func EnrichWithDeclination(obs Observation, s DeclinationSettings) (DeclinationEvent, error) {
	if obs.Geo.IsZero() {
		return DeclinationEvent{}, fmt.Errorf("%w: %s", ErrNoLocation, obs.ID)
	}

	alt := s.AltitudeKm
	if obs.AltitudeKm != nil {
		alt = *obs.AltitudeKm
	}

	rep, err := geomag.Compute(s.ModelFile, geomag.Query{
		Latitude:   obs.Geo.Lat,
		Longitude:  obs.Geo.Lon,
		AltitudeKm: alt,
		Date:       TargetDate(obs, s.FixedDate),
	})
	if err != nil {
		return DeclinationEvent{}, fmt.Errorf("compute declination for %s: %w", obs.ID, err)
	}

	return DeclinationEvent{
		ID:          obs.ID,
		Geo:         obs.Geo,
		AltitudeKm:  alt,
		EventTime:   obs.EventTime,
		Location:    obs.Location,
		PlaceName:   obs.PlaceName,
		GeoSource:   obs.GeoSource,
		Report:      rep,
		Correction:  rep.Correction(),
		ProcessedAt: clock.Now(),
	}, nil
}

// Serialize encodes a DeclinationEvent for the sink topic, keyed by ID.
func Serialize(event DeclinationEvent) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize declination event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(event.ID),
		Value: data,
		Headers: map[string]string{
			"advisory":     event.Advisory.String(),
			"processed_at": event.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// SortedHeaderKeys returns the header names of out in lexical order.
func (out OutputEvent) SortedHeaderKeys() []string {
	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
