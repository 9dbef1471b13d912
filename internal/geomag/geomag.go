package geomag

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Query is one declination lookup.
type Query struct {
	Latitude   float64
	Longitude  float64
	AltitudeKm float64
	// Date is a decimal year, see DecimalYear.
	Date   float64
	System CoordinateSystem
	// External enables an external degree-1 field when non-nil.
	External *ExternalField
}

func (q Query) coordinate() Coordinate {
	return Coordinate{
		Latitude:   q.Latitude,
		Longitude:  q.Longitude,
		AltitudeKm: q.AltitudeKm,
		System:     q.System,
	}
}

// Report holds the field elements at one point and date. Angles are in
// degrees, intensities in nT. Rates are per year: arc-minutes for angles, nT
// for intensities.
type Report struct {
	Model string  `json:"model"`
	Date  float64 `json:"date"`

	Declination Value   `json:"declination"`
	Inclination Value   `json:"inclination"`
	Horizontal  float64 `json:"horizontal_intensity"`
	Total       float64 `json:"total_intensity"`
	North       Value   `json:"north"`
	East        Value   `json:"east"`
	Down        float64 `json:"down"`

	DeclinationRate Value   `json:"declination_rate"`
	InclinationRate Value   `json:"inclination_rate"`
	HorizontalRate  float64 `json:"horizontal_rate"`
	TotalRate       float64 `json:"total_rate"`
	NorthRate       Value   `json:"north_rate"`
	EastRate        Value   `json:"east_rate"`
	DownRate        float64 `json:"down_rate"`

	Advisory           Advisory `json:"advisory"`
	DateOutOfRange     bool     `json:"date_out_of_range,omitempty"`
	AltitudeOutOfRange bool     `json:"altitude_out_of_range,omitempty"`
}

// Correction returns the angle to add to a magnetic bearing to obtain the
// true bearing: the declination negated.
func (r Report) Correction() Value {
	return r.Declination.apply(func(d float64) float64 { return -d })
}

// Compute opens the coefficient file at path and computes the report for q.
// The file is closed before Compute returns.
func Compute(path string, q Query) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer f.Close()
	return ComputeFrom(f, q)
}

// LoadCatalogFile reads the model catalog of the coefficient file at path.
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer f.Close()
	cat, err := LoadCatalog(f)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: load catalog: %w", ErrResourceUnavailable, err)
	}
	return cat, nil
}

// ComputeFrom computes the report for q from a coefficient file. r is read
// from its start regardless of its current position.
func ComputeFrom(r io.ReadSeeker, q Query) (Report, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Report{}, fmt.Errorf("%w: rewind: %w", ErrResourceUnavailable, err)
	}
	cat, err := LoadCatalog(r)
	if err != nil {
		return Report{}, fmt.Errorf("%w: load catalog: %w", ErrResourceUnavailable, err)
	}
	model, now, next, err := Combine(r, cat, q.Date)
	if err != nil {
		return Report{}, err
	}

	c := q.coordinate()
	rep := buildReport(
		Evaluate(now, c, q.External),
		Evaluate(next, c, q.External),
	)
	rep.Model = model.Name
	rep.Date = q.Date
	rep.DateOutOfRange = !cat.Covers(q.Date)
	rep.AltitudeOutOfRange = q.AltitudeKm < model.MinAltitudeKm || q.AltitudeKm > model.MaxAltitudeKm
	applyPolicy(&rep, q.Latitude)
	return rep, nil
}

// Declination returns the correction to apply to a magnetic bearing at the
// given geodetic point, at sea level, on date (decimal year).
func Declination(path string, lat, lon, date float64) (Value, error) {
	rep, err := Compute(path, Query{Latitude: lat, Longitude: lon, Date: date})
	if err != nil {
		return Indeterminate, err
	}
	return rep.Correction(), nil
}

// buildReport derives the elements for the target date and one year later
// and the annual change between them.
func buildReport(now, next FieldVector) Report {
	e := Derive(now)
	e1 := Derive(next)

	rep := Report{
		Declination: e.Declination.apply(degrees),
		Inclination: e.Inclination.apply(degrees),
		Horizontal:  e.Horizontal,
		Total:       e.Total,
		North:       Known(now.North),
		East:        Known(now.East),
		Down:        now.Down,

		HorizontalRate: e1.Horizontal - e.Horizontal,
		TotalRate:      e1.Total - e.Total,
		NorthRate:      Known(next.North - now.North),
		EastRate:       Known(next.East - now.East),
		DownRate:       next.Down - now.Down,
	}

	d0, ok0 := e.Declination.Float()
	d1, ok1 := e1.Declination.Float()
	if ok0 && ok1 {
		rep.DeclinationRate = Known(wrapDegrees((d1-d0)*radToDeg) * 60)
	}
	i0, ok0 := e.Inclination.Float()
	i1, ok1 := e1.Inclination.Float()
	if ok0 && ok1 {
		rep.InclinationRate = Known((i1 - i0) * radToDeg * 60)
	}
	return rep
}

func degrees(rad float64) float64 {
	return rad * radToDeg
}

// wrapDegrees maps a difference into (-180, 180].
func wrapDegrees(d float64) float64 {
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// DecimalYear converts t to a fractional year, e.g. 2025-07-02 ≈ 2025.5.
func DecimalYear(t time.Time) float64 {
	t = t.UTC()
	y := t.Year()
	start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC)
	return float64(y) + float64(t.Sub(start))/float64(end.Sub(start))
}

// ParseDate accepts a decimal year ("2024.5"), an RFC 3339 timestamp or a
// calendar date ("2024-07-01") and returns the decimal year.
func ParseDate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DecimalYear(t), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DecimalYear(t), nil
	}
	return 0, fmt.Errorf("invalid date %q", s)
}
