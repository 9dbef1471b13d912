package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
	"github.com/spf13/cobra"
)

func newDeclinationCmd() *cobra.Command {
	var (
		lat, lon, alt float64
		date          string
		geocentric    bool
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "declination",
		Short: "Compute the field elements at one point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for name, v := range map[string]float64{"lat": lat, "lon": lon, "alt": alt} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("--%s %g is not a finite number", name, v)
				}
			}
			if lat < -90 || lat > 90 {
				return fmt.Errorf("--lat %g out of range [-90, 90]", lat)
			}
			if lon < -180 || lon > 180 {
				return fmt.Errorf("--lon %g out of range [-180, 180]", lon)
			}

			q := geomag.Query{Latitude: lat, Longitude: lon, AltitudeKm: alt}
			if geocentric {
				q.System = geomag.Geocentric
			}
			q.Date = geomag.DecimalYear(time.Now())
			if date != "" {
				d, err := geomag.ParseDate(date)
				if err != nil {
					return err
				}
				q.Date = d
			}

			rep, err := geomag.Compute(modelPath(cmd), q)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), q, rep)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&lat, "lat", 0, "latitude in degrees, north positive")
	f.Float64Var(&lon, "lon", 0, "longitude in degrees, east positive")
	f.Float64Var(&alt, "alt", 0, "altitude in km")
	f.StringVar(&date, "date", "", "decimal year, YYYY-MM-DD or RFC 3339 (default now)")
	f.BoolVar(&geocentric, "geocentric", false, "interpret latitude and altitude as geocentric")
	f.BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func printReport(w io.Writer, q geomag.Query, rep geomag.Report) {
	fmt.Fprintf(w, "Model:        %s\n", rep.Model)
	fmt.Fprintf(w, "Date:         %.3f\n", rep.Date)
	fmt.Fprintf(w, "Position:     %.4f, %.4f at %g km (%s)\n", q.Latitude, q.Longitude, q.AltitudeKm, q.System)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "D  %-14s %s  %s\n", "declination", angle(rep.Declination), rate(rep.DeclinationRate, "'/yr"))
	fmt.Fprintf(w, "   %-14s %s\n", "correction", angle(rep.Correction()))
	fmt.Fprintf(w, "I  %-14s %s  %s\n", "inclination", angle(rep.Inclination), rate(rep.InclinationRate, "'/yr"))
	fmt.Fprintf(w, "H  %-14s %10.1f nT  %+.1f nT/yr\n", "horizontal", rep.Horizontal, rep.HorizontalRate)
	fmt.Fprintf(w, "X  %-14s %s  %s\n", "north", nanotesla(rep.North), rate(rep.NorthRate, " nT/yr"))
	fmt.Fprintf(w, "Y  %-14s %s  %s\n", "east", nanotesla(rep.East), rate(rep.EastRate, " nT/yr"))
	fmt.Fprintf(w, "Z  %-14s %10.1f nT  %+.1f nT/yr\n", "down", rep.Down, rep.DownRate)
	fmt.Fprintf(w, "F  %-14s %10.1f nT  %+.1f nT/yr\n", "total", rep.Total, rep.TotalRate)

	if rep.Advisory != geomag.AdvisoryNone {
		fmt.Fprintf(w, "\nwarning: %s\n", rep.Advisory)
	}
	if rep.DateOutOfRange {
		fmt.Fprintln(w, "warning: date outside the model's valid range")
	}
	if rep.AltitudeOutOfRange {
		fmt.Fprintln(w, "warning: altitude outside the model's valid range")
	}
}

func angle(v geomag.Value) string {
	f, ok := v.Float()
	if !ok {
		return fmt.Sprintf("%13s", "indeterminate")
	}
	return fmt.Sprintf("%12.2f°", f)
}

func nanotesla(v geomag.Value) string {
	f, ok := v.Float()
	if !ok {
		return fmt.Sprintf("%13s", "indeterminate")
	}
	return fmt.Sprintf("%10.1f nT", f)
}

func rate(v geomag.Value, unit string) string {
	f, ok := v.Float()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%+.1f%s", f, unit)
}
