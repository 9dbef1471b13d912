package geomag

import (
	"fmt"
	"math"
	"strings"
)

const (
	// EarthRadiusKm is the reference radius of the geomagnetic models.
	EarthRadiusKm = 6371.2

	// WGS84 semi-axes squared, km².
	wgs84A2 = 40680631.59
	wgs84B2 = 40408299.98

	// poleClampDeg keeps the latitude this far from either pole.
	poleClampDeg = 0.001

	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// CoordinateSystem selects how latitude and altitude are interpreted.
type CoordinateSystem int

const (
	// Geodetic coordinates are on the WGS84 ellipsoid, altitude above it.
	Geodetic CoordinateSystem = iota
	// Geocentric coordinates are spherical, altitude above EarthRadiusKm.
	Geocentric
)

func (s CoordinateSystem) String() string {
	if s == Geocentric {
		return "geocentric"
	}
	return "geodetic"
}

// ParseCoordinateSystem accepts "geodetic" or "geocentric", case-insensitive.
// An empty string selects Geodetic.
func ParseCoordinateSystem(s string) (CoordinateSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "geodetic":
		return Geodetic, nil
	case "geocentric":
		return Geocentric, nil
	}
	return Geodetic, fmt.Errorf("unknown coordinate system %q", s)
}

// Coordinate is a point at which the field is evaluated.
type Coordinate struct {
	Latitude   float64 // degrees, north positive
	Longitude  float64 // degrees, east positive
	AltitudeKm float64
	System     CoordinateSystem
}

// ExternalField holds first-degree coefficients of a near-Earth external
// source such as the ring current.
type ExternalField struct {
	G10, G11, H11 float64
}

// FieldVector is the field at a point, in the units of the coefficients (nT).
type FieldVector struct {
	North float64 `json:"north"`
	East  float64 `json:"east"`
	Down  float64 `json:"down"`
}

// Evaluate sums the spherical-harmonic series of field at c. A nil ext
// disables the external contribution.
func Evaluate(field CombinedField, c Coordinate, ext *ExternalField) FieldVector {
	nmax := field.MaxDegree
	gh := field.Values

	lat := c.Latitude
	switch {
	case 90-lat < poleClampDeg:
		lat = 90 - poleClampDeg
	case 90+lat < poleClampDeg:
		lat = -90 + poleClampDeg
	}
	slat := math.Sin(lat * degToRad)
	clat := math.Cos(lat * degToRad)

	// sl[m], cl[m] hold sin(m·λ), cos(m·λ).
	sl := make([]float64, max(nmax+1, 2))
	cl := make([]float64, max(nmax+1, 2))
	sl[1] = math.Sin(c.Longitude * degToRad)
	cl[1] = math.Cos(c.Longitude * degToRad)

	// (sd, cd) rotate geocentric components back to geodetic.
	sd, cd := 0.0, 1.0
	r := EarthRadiusKm + c.AltitudeKm
	if c.System == Geodetic {
		alt := c.AltitudeKm
		aa := wgs84A2 * clat * clat
		bb := wgs84B2 * slat * slat
		cc := aa + bb
		dd := math.Sqrt(cc)
		r = math.Sqrt(alt*(alt+2*dd) + (wgs84A2*aa+wgs84B2*bb)/cc)
		cd = (alt + dd) / r
		sd = (wgs84A2 - wgs84B2) / dd * slat * clat / r
		slat, clat = slat*cd-clat*sd, clat*cd+slat*sd
	}
	ratio := EarthRadiusKm / r

	// p[k], q[k] are the Legendre functions scaled by (n+1) and their
	// latitude derivatives, 1-based in canonical (n, m) order.
	npq := nmax * (nmax + 3) / 2
	p := make([]float64, max(npq+1, 5))
	q := make([]float64, max(npq+1, 5))
	sqrt3 := math.Sqrt(3)
	p[1] = 2 * slat
	p[2] = 2 * clat
	p[3] = 4.5*slat*slat - 1.5
	p[4] = 3 * sqrt3 * clat * slat
	q[1] = -clat
	q[2] = slat
	q[3] = -3 * clat * slat
	q[4] = sqrt3 * (slat*slat - clat*clat)

	var (
		x, y, z float64
		rr, fn  float64
		n, m    = 0, 1
		l       int
	)
	for k := 1; k <= npq; k++ {
		if n < m {
			m = 0
			n++
			rr = math.Pow(ratio, float64(n+2))
			fn = float64(n)
		}
		fm := float64(m)

		if k >= 5 {
			if m == n {
				aa := math.Sqrt(1 - 0.5/fm)
				j := k - n - 1
				p[k] = (1 + 1/fm) * aa * clat * p[j]
				q[k] = aa * (clat*q[j] + slat/fm*p[j])
				sl[m] = sl[m-1]*cl[1] + cl[m-1]*sl[1]
				cl[m] = cl[m-1]*cl[1] - sl[m-1]*sl[1]
			} else {
				aa := math.Sqrt(fn*fn - fm*fm)
				bb := math.Sqrt((fn-1)*(fn-1)-fm*fm) / aa
				cc := (2*fn - 1) / aa
				ii := k - n
				j := k - 2*n + 1
				p[k] = (fn + 1) * (cc*slat/fn*p[ii] - bb/(fn-1)*p[j])
				q[k] = cc*(slat*q[ii]-clat/fn*p[ii]) - bb*q[j]
			}
		}

		aa := rr * gh[l]
		if m == 0 {
			x += aa * q[k]
			z -= aa * p[k]
			l++
		} else {
			bb := rr * gh[l+1]
			cc := aa*cl[m] + bb*sl[m]
			x += cc * q[k]
			z -= cc * p[k]
			if clat > 0 {
				y += (aa*sl[m] - bb*cl[m]) * fm * p[k] / ((fn + 1) * clat)
			} else {
				y += (aa*sl[m] - bb*cl[m]) * q[k] * slat
			}
			l += 2
		}
		m++
	}

	if ext != nil {
		aa := ext.G11*cl[1] + ext.H11*sl[1]
		x = x - ext.G10*clat + aa*slat
		y = y + ext.G11*sl[1] - ext.H11*cl[1]
		z = z + ext.G10*slat + aa*clat
	}

	return FieldVector{
		North: x*cd + z*sd,
		East:  y,
		Down:  z*cd - x*sd,
	}
}
