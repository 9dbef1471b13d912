package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a coefficient file end to end",
		Long: `Reads every record of the coefficient file, both coefficient columns of each
model, and evaluates each model at a control point. Exits non-zero when any
phase fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.OutOrStdout(), modelPath(cmd))
		},
	}
}

func runValidate(w io.Writer, path string) error {
	fmt.Fprintf(w, "=== Coefficient File Validation: %s ===\n\n", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat model file: %w", err)
	}

	structure := &phase{name: "Record structure"}
	cat, err := geomag.LoadCatalog(f)
	if err != nil {
		structure.errorf("%v", err)
	}

	phases := []*phase{structure}
	if structure.passed() {
		phases = append(phases,
			validatePrimary(f, cat),
			validateSecondary(f, cat),
			validateEvaluation(path, cat),
		)
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s, %s records, %d models\n",
		humanize.Bytes(uint64(info.Size())), humanize.Comma(int64(cat.Records)), len(cat.Models))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Fprintln(w, "\nValidation FAILED.")
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return nil
}

func validatePrimary(r io.ReadSeeker, cat geomag.Catalog) *phase {
	p := &phase{name: "Primary coefficients"}
	for _, m := range cat.Models {
		set, err := geomag.ReadCoefficients(r, m.Offset, m.MaxDegree, geomag.PrimaryColumns)
		if err != nil {
			p.errorf("%s: %v", m.Name, err)
			continue
		}
		if m.MaxDegree >= 1 && set.G(1, 0) == 0 {
			p.errorf("%s: dipole coefficient g(1,0) is zero", m.Name)
		}
	}
	return p
}

// validateSecondary reads the secular variation of extrapolated models and
// checks that interpolated models have a successor to interpolate towards.
func validateSecondary(r io.ReadSeeker, cat geomag.Catalog) *phase {
	p := &phase{name: "Secondary coefficients"}
	for i, m := range cat.Models {
		if !m.Extrapolated() {
			if i+1 >= len(cat.Models) {
				p.errorf("%s: no secular variation and no successor model", m.Name)
			}
			continue
		}
		if _, err := geomag.ReadCoefficients(r, m.Offset, m.SVMaxDegree, geomag.SecondaryColumns); err != nil {
			p.errorf("%s: %v", m.Name, err)
		}
	}
	return p
}

// validateEvaluation computes the field at 0°N 0°E on the ellipsoid at each
// model's epoch.
func validateEvaluation(path string, cat geomag.Catalog) *phase {
	p := &phase{name: "Field evaluation at control point"}
	for _, m := range cat.Models {
		rep, err := geomag.Compute(path, geomag.Query{Date: m.Epoch})
		if err != nil {
			p.errorf("%s: %v", m.Name, err)
			continue
		}
		if rep.Declination.IsIndeterminate() {
			p.errorf("%s: declination indeterminate at the control point", m.Name)
		}
		for name, v := range map[string]float64{"H": rep.Horizontal, "F": rep.Total, "Z": rep.Down} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("%s: %s is not finite", m.Name, name)
			}
		}
		if rep.Total <= 0 {
			p.errorf("%s: total intensity %.1f nT", m.Name, rep.Total)
		}
	}
	return p
}
