package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
)

// LocationRecord is the JSON shape read from the source topic. Unknown fields
// are ignored so enriched storm events can be consumed directly.
type LocationRecord struct {
	ID         string    `json:"id"`
	Geo        Geo       `json:"geo"`
	AltitudeKm *float64  `json:"altitude_km,omitempty"`
	EventTime  time.Time `json:"event_time"`
	BeginTime  time.Time `json:"begin_time"`
	Location   Location  `json:"location"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Location names the place an event refers to.
type Location struct {
	Name   string `json:"name,omitempty"`
	State  string `json:"state,omitempty"`
	County string `json:"county,omitempty"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// IsZero reports whether the pair is the (0, 0) "missing" sentinel.
func (g Geo) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// Observation is a parsed source event awaiting declination.
type Observation struct {
	ID         string
	Geo        Geo
	AltitudeKm *float64
	EventTime  time.Time
	Location   Location

	// Geocoding enrichment fields.
	FormattedAddress string
	PlaceName        string
	GeoConfidence    float64
	GeoSource        string // "original", "forward", "failed"

	RawPayload []byte
}

// DeclinationEvent is the enriched record published to the sink topic.
type DeclinationEvent struct {
	ID         string    `json:"id"`
	Geo        Geo       `json:"geo"`
	AltitudeKm float64   `json:"altitude_km"`
	EventTime  time.Time `json:"event_time,omitzero"`
	Location   Location  `json:"location,omitzero"`
	PlaceName  string    `json:"place_name,omitempty"`
	GeoSource  string    `json:"geo_source,omitempty"`

	geomag.Report

	// Correction is the angle to add to a magnetic bearing for true north.
	Correction  geomag.Value `json:"correction"`
	ProcessedAt time.Time    `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
