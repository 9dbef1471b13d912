package geomag

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxDegree is the highest spherical-harmonic degree supported.
const MaxDegree = 13

// Columns selects which g/h pair of a coefficient record is read.
type Columns int

const (
	// PrimaryColumns selects the main-field g and h.
	PrimaryColumns Columns = iota
	// SecondaryColumns selects the second pair, the secular variation.
	SecondaryColumns
)

func (c Columns) String() string {
	if c == SecondaryColumns {
		return "secondary"
	}
	return "primary"
}

// SlotCount is the number of coefficients in a model of degree nmax.
func SlotCount(nmax int) int {
	return nmax * (nmax + 2)
}

// Index returns the slot of g(n, m). For m > 0, h(n, m) follows at Index+1.
// Slots run n ascending, then m ascending, matching the record order.
func Index(n, m int) int {
	if m == 0 {
		return n*n - 1
	}
	return n*n - 1 + 2*m - 1
}

// CoefficientSet holds Schmidt quasi-normalized coefficients up to MaxDegree.
type CoefficientSet struct {
	MaxDegree int
	Values    []float64
}

// NewCoefficientSet returns a zeroed set of degree nmax.
func NewCoefficientSet(nmax int) CoefficientSet {
	return CoefficientSet{MaxDegree: nmax, Values: make([]float64, SlotCount(nmax))}
}

// G returns g(n, m).
func (c CoefficientSet) G(n, m int) float64 {
	return c.Values[Index(n, m)]
}

// H returns h(n, m), which is zero for m == 0.
func (c CoefficientSet) H(n, m int) float64 {
	if m == 0 {
		return 0
	}
	return c.Values[Index(n, m)+1]
}

// Set stores g(n, m) and, for m > 0, h(n, m).
func (c CoefficientSet) Set(n, m int, g, h float64) {
	i := Index(n, m)
	c.Values[i] = g
	if m != 0 {
		c.Values[i+1] = h
	}
}

// ReadCoefficients reads the coefficients of one model, starting at offset,
// up to degree nmax. Records must arrive in canonical (n, m) order; the first
// mismatch fails the whole read.
func ReadCoefficients(r io.ReadSeeker, offset int64, nmax int, cols Columns) (CoefficientSet, error) {
	if nmax < 0 || nmax > MaxDegree {
		return CoefficientSet{}, fmt.Errorf("%w: degree %d outside 0..%d", ErrCorruptRecord, nmax, MaxDegree)
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return CoefficientSet{}, fmt.Errorf("seek to offset %d: %w", offset, err)
	}

	set := NewCoefficientSet(nmax)
	br := bufio.NewReader(r)
	for n := 1; n <= nmax; n++ {
		for m := 0; m <= n; m++ {
			rec, err := br.ReadString('\n')
			if err != nil && (len(rec) == 0 || !errors.Is(err, io.EOF)) {
				if errors.Is(err, io.EOF) {
					return CoefficientSet{}, fmt.Errorf("%w: file ends before coefficient (%d,%d)", ErrCorruptRecord, n, m)
				}
				return CoefficientSet{}, fmt.Errorf("read coefficient (%d,%d): %w", n, m, err)
			}
			g, h, err := parseCoefficient(rec, n, m, cols)
			if err != nil {
				return CoefficientSet{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
			}
			set.Set(n, m, g, h)
		}
	}
	return set, nil
}

func parseCoefficient(rec string, n, m int, cols Columns) (g, h float64, err error) {
	degree, rest := leadingField(rec)
	order, rest := leadingField(rest)
	f := strings.Fields(rest)
	if degree == "" || order == "" || len(f) < 4 {
		return 0, 0, fmt.Errorf("coefficient (%d,%d): malformed record %q", n, m, strings.TrimRight(rec, "\r\n"))
	}

	var p fieldParser
	gotN := p.int("degree", degree)
	gotM := p.int("order", order)
	if p.err != nil {
		return 0, 0, fmt.Errorf("coefficient (%d,%d): %w", n, m, p.err)
	}
	if gotN != n || gotM != m {
		return 0, 0, fmt.Errorf("coefficient (%d,%d): record holds (%d,%d)", n, m, gotN, gotM)
	}

	col := 0
	if cols == SecondaryColumns {
		col = 2
	}
	g = p.float("g", f[col])
	h = p.float("h", f[col+1])
	if p.err != nil {
		return 0, 0, fmt.Errorf("coefficient (%d,%d): %w", n, m, p.err)
	}
	return g, h, nil
}

// leadingField returns the 2-character degree or order field at the start of
// s after any padding, and the remainder. Fields may be space separated or
// packed together ("1010" is degree 10, order 10).
func leadingField(s string) (field, rest string) {
	s = strings.TrimLeft(s, " ")
	i := 0
	for i < len(s) && i < 2 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
