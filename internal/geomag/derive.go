package geomag

import "math"

// resolution is the smallest intensity (nT) treated as non-zero.
const resolution = 0.0001

// Elements are the field elements derived from a FieldVector. Angles are in
// radians.
type Elements struct {
	Declination Value
	Inclination Value
	Horizontal  float64
	Total       float64
}

// Derive converts a field vector into declination, inclination, horizontal
// and total intensity.
func Derive(v FieldVector) Elements {
	h := math.Sqrt(v.North*v.North + v.East*v.East)
	e := Elements{
		Horizontal: h,
		Total:      math.Sqrt(h*h + v.Down*v.Down),
	}
	if e.Total < resolution {
		return e
	}

	e.Inclination = Known(math.Atan2(v.Down, h))
	switch {
	case h < resolution:
		// Vertical field: no horizontal bearing.
	case h+v.North < resolution:
		e.Declination = Known(math.Pi)
	default:
		e.Declination = Known(2 * math.Atan2(v.East, h+v.North))
	}
	return e
}

// Advisory flags a result whose declination should be used with care.
type Advisory int

const (
	AdvisoryNone Advisory = iota
	// AdvisoryWeakField: H below 5000 nT, compass accuracy may be degraded.
	AdvisoryWeakField
	// AdvisoryVeryWeakField: H below 1000 nT, compass is unreliable.
	AdvisoryVeryWeakField
	// AdvisoryGeographicPole: declination is undefined at a geographic pole.
	AdvisoryGeographicPole
)

const (
	// Below magneticPoleH the declination is not reported at all.
	magneticPoleH = 100.0
	veryWeakH     = 1000.0
	weakH         = 5000.0
)

var advisoryNames = map[Advisory]string{
	AdvisoryNone:           "none",
	AdvisoryWeakField:      "weak_field",
	AdvisoryVeryWeakField:  "very_weak_field",
	AdvisoryGeographicPole: "geographic_pole",
}

func (a Advisory) String() string {
	if s, ok := advisoryNames[a]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the advisory by name.
func (a Advisory) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an advisory name; unknown names decode to AdvisoryNone.
func (a *Advisory) UnmarshalText(b []byte) error {
	*a = AdvisoryNone
	for k, v := range advisoryNames {
		if v == string(b) {
			*a = k
		}
	}
	return nil
}

// AdvisoryFor classifies a horizontal intensity in nT.
func AdvisoryFor(h float64) Advisory {
	switch {
	case h < veryWeakH:
		return AdvisoryVeryWeakField
	case h < weakH:
		return AdvisoryWeakField
	default:
		return AdvisoryNone
	}
}

// atGeographicPole reports whether lat is within the pole clamp distance.
func atGeographicPole(lat float64) bool {
	return 90-math.Abs(lat) <= poleClampDeg
}

// applyPolicy blanks the elements that cannot be trusted at the report's
// location and sets the advisory.
func applyPolicy(rep *Report, latitude float64) {
	if rep.Horizontal < magneticPoleH {
		rep.Declination = Indeterminate
		rep.DeclinationRate = Indeterminate
	}
	rep.Advisory = AdvisoryFor(rep.Horizontal)

	if atGeographicPole(latitude) {
		rep.North = Indeterminate
		rep.East = Indeterminate
		rep.Declination = Indeterminate
		rep.NorthRate = Indeterminate
		rep.EastRate = Indeterminate
		rep.DeclinationRate = Indeterminate
		rep.Advisory = AdvisoryGeographicPole
	}
}
