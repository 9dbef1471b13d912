package geomag

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// RecordLength is the length of an LF-terminated record. CR LF records are
	// one byte longer.
	RecordLength = 81

	// MaxModels is the most models a single coefficient file may hold.
	MaxModels = 30
)

// ModelDescriptor describes one model in a coefficient file.
type ModelDescriptor struct {
	Name           string  `json:"name" yaml:"name"`
	Epoch          float64 `json:"epoch" yaml:"epoch"`
	MaxDegree      int     `json:"max_degree" yaml:"max_degree"`
	SVMaxDegree    int     `json:"sv_max_degree" yaml:"sv_max_degree"`
	ReservedDegree int     `json:"reserved_degree" yaml:"reserved_degree"`
	MinYear        float64 `json:"min_year" yaml:"min_year"`
	MaxYear        float64 `json:"max_year" yaml:"max_year"`
	MinAltitudeKm  float64 `json:"min_altitude_km" yaml:"min_altitude_km"`
	MaxAltitudeKm  float64 `json:"max_altitude_km" yaml:"max_altitude_km"`

	// Offset is the byte offset of the model's first coefficient record.
	Offset int64 `json:"offset" yaml:"offset"`
}

// Extrapolated reports whether the model carries its own secular variation.
// Models without one are interpolated towards their successor.
func (m ModelDescriptor) Extrapolated() bool {
	return m.SVMaxDegree > 0
}

// Catalog is the ordered list of models in a coefficient file.
type Catalog struct {
	Models []ModelDescriptor `json:"models" yaml:"models"`

	// MinYear and MaxYear span the valid dates of all models.
	MinYear float64 `json:"min_year" yaml:"min_year"`
	MaxYear float64 `json:"max_year" yaml:"max_year"`

	// Records counts every record read, headers included.
	Records int `json:"records" yaml:"records"`
}

// Select returns the index of the model used for date: the first model whose
// last valid year lies after date, or the last model.
func (c Catalog) Select(date float64) int {
	for i, m := range c.Models {
		if date < m.MaxYear {
			return i
		}
	}
	return len(c.Models) - 1
}

// Covers reports whether date lies within the catalog's valid range.
func (c Catalog) Covers(date float64) bool {
	return date >= c.MinYear && date <= c.MaxYear
}

// LoadCatalog scans a coefficient file and returns its models. The whole read
// fails on the first bad record.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var (
		cat    Catalog
		offset int64
		line   int
	)
	br := bufio.NewReader(r)
	for {
		rec, err := br.ReadString('\n')
		if len(rec) == 0 && errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return Catalog{}, fmt.Errorf("read record %d: %w", line+1, err)
		}
		line++
		offset += int64(len(rec))

		if n := len(rec); n != RecordLength && n != RecordLength+1 {
			return Catalog{}, fmt.Errorf("%w: record %d has length %d", ErrCorruptRecord, line, n)
		}
		cat.Records++

		if !strings.HasPrefix(rec, "   ") {
			continue
		}
		if len(cat.Models) == MaxModels {
			return Catalog{}, fmt.Errorf("%w: more than %d models", ErrTooManyModels, MaxModels)
		}
		m, err := parseHeader(rec)
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: record %d: %w", ErrCorruptRecord, line, err)
		}
		m.Offset = offset
		cat.addModel(m)
	}

	if len(cat.Models) == 0 {
		return Catalog{}, fmt.Errorf("%w: no model header found", ErrCorruptRecord)
	}
	return cat, nil
}

func (c *Catalog) addModel(m ModelDescriptor) {
	if len(c.Models) == 0 {
		c.MinYear, c.MaxYear = m.MinYear, m.MaxYear
	} else {
		c.MinYear = min(c.MinYear, m.MinYear)
		c.MaxYear = max(c.MaxYear, m.MaxYear)
	}
	c.Models = append(c.Models, m)
}

// parseHeader reads the nine leading header fields; anything after them is
// ignored.
func parseHeader(rec string) (ModelDescriptor, error) {
	f := strings.Fields(rec)
	if len(f) < 9 {
		return ModelDescriptor{}, fmt.Errorf("header has %d fields, want 9", len(f))
	}

	var p fieldParser
	m := ModelDescriptor{
		Name:           f[0],
		Epoch:          p.float("epoch", f[1]),
		MaxDegree:      p.int("max degree", f[2]),
		SVMaxDegree:    p.int("secular variation max degree", f[3]),
		ReservedDegree: p.int("reserved degree", f[4]),
		MinYear:        p.float("min year", f[5]),
		MaxYear:        p.float("max year", f[6]),
		MinAltitudeKm:  p.float("min altitude", f[7]),
		MaxAltitudeKm:  p.float("max altitude", f[8]),
	}
	if p.err != nil {
		return ModelDescriptor{}, p.err
	}
	if m.MaxDegree < 1 || m.MaxDegree > MaxDegree {
		return ModelDescriptor{}, fmt.Errorf("max degree %d outside 1..%d", m.MaxDegree, MaxDegree)
	}
	if m.SVMaxDegree < 0 || m.SVMaxDegree > MaxDegree {
		return ModelDescriptor{}, fmt.Errorf("secular variation max degree %d outside 0..%d", m.SVMaxDegree, MaxDegree)
	}
	return m, nil
}

// fieldParser keeps the first parse error so a record can be decoded in one
// expression.
type fieldParser struct {
	err error
}

func (p *fieldParser) float(name, s string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("parse %s %q: %w", name, s, err)
	}
	return v
}

func (p *fieldParser) int(name, s string) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("parse %s %q: %w", name, s, err)
	}
	return v
}
