package geomag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testModel describes one model of a generated coefficient file. Coefficients
// not listed are zero.
type testModel struct {
	name             string
	epoch            float64
	nmax, nmaxSV     int
	minYear, maxYear float64
	minAlt, maxAlt   float64
	// coeffs maps (n, m) to g, h, gdot, hdot.
	coeffs map[[2]int][4]float64
}

func dipoleModel(name string, epoch float64, g10, g11, h11 float64) testModel {
	return testModel{
		name:    name,
		epoch:   epoch,
		nmax:    1,
		nmaxSV:  1,
		minYear: epoch,
		maxYear: epoch + 5,
		minAlt:  -1,
		maxAlt:  600,
		coeffs: map[[2]int][4]float64{
			{1, 0}: {g10, 0, 0, 0},
			{1, 1}: {g11, h11, 0, 0},
		},
	}
}

func (m testModel) headerRecord() string {
	return fmt.Sprintf("   %-8s %7.2f%3d%3d%3d %7.2f %7.2f %7.1f %7.1f",
		m.name, m.epoch, m.nmax, m.nmaxSV, 0, m.minYear, m.maxYear, m.minAlt, m.maxAlt)
}

func (m testModel) records() []string {
	recs := []string{m.headerRecord()}
	line := 1
	for n := 1; n <= m.nmax; n++ {
		for o := 0; o <= n; o++ {
			c := m.coeffs[[2]int{n, o}]
			recs = append(recs, fmt.Sprintf("%2d%3d%12.2f%12.2f%12.2f%12.2f %10s%4d",
				n, o, c[0], c[1], c[2], c[3], m.name, line))
			line++
		}
	}
	return recs
}

// coefficientRecordCount is the number of coefficient records of degree nmax.
func coefficientRecordCount(nmax int) int {
	return nmax * (nmax + 3) / 2
}

// buildFile pads every record to 80 columns and terminates it with LF, or
// CR LF when crlf is set.
func buildFile(crlf bool, recs ...string) string {
	eol := "\n"
	if crlf {
		eol = "\r\n"
	}
	var b strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&b, "%-80s%s", r, eol)
	}
	return b.String()
}

func buildModels(crlf bool, models ...testModel) string {
	var recs []string
	for _, m := range models {
		recs = append(recs, m.records()...)
	}
	return buildFile(crlf, recs...)
}

func writeModelFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "TEST.COF")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
