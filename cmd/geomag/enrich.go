package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/storm-data-geomag/internal/domain"
	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// enrichStats summarizes a batch enrichment run.
type enrichStats struct {
	total      int
	enriched   int
	skipped    map[string]int
	advisories map[string]int
	minD, maxD float64
	haveD      bool
}

func newEnrichCmd() *cobra.Command {
	var (
		in, out, now, fixedDate string
		alt                     float64
	)
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Compute declinations for a JSON array of events",
		Long: `Reads a JSON array of location-bearing events (the shape consumed from Kafka),
computes the declination for each and writes the resulting declination events
as a JSON array. ProcessedAt comes from --now so output is reproducible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			processedAt, err := time.Parse(time.RFC3339, now)
			if err != nil {
				return fmt.Errorf("invalid --now: %w", err)
			}
			if math.IsNaN(alt) || math.IsInf(alt, 0) {
				return fmt.Errorf("--alt %g is not a finite number", alt)
			}
			settings := domain.DeclinationSettings{ModelFile: modelPath(cmd), AltitudeKm: alt}
			if fixedDate != "" {
				d, err := geomag.ParseDate(fixedDate)
				if err != nil {
					return err
				}
				settings.FixedDate = &d
			}

			domain.SetClock(clockwork.NewFakeClockAt(processedAt))
			defer domain.SetClock(nil)

			events, stats, err := enrichFile(in, settings)
			if err != nil {
				return err
			}
			if err := writeJSON(out, events); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in, "in", "", "input JSON array of events")
	f.StringVar(&out, "out", "", "output path for the declination events")
	f.StringVar(&now, "now", "2024-04-27T06:00:00Z", "processing timestamp stamped on every event")
	f.StringVar(&fixedDate, "fixed-date", "", "evaluate every event at this date instead of its event time")
	f.Float64Var(&alt, "alt", 0, "altitude in km for events without one")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func enrichFile(path string, settings domain.DeclinationSettings) ([]domain.DeclinationEvent, enrichStats, error) {
	stats := enrichStats{skipped: map[string]int{}, advisories: map[string]int{}}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stats, fmt.Errorf("read events: %w", err)
	}
	var payloads []json.RawMessage
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, stats, fmt.Errorf("decode events: %w", err)
	}

	events := make([]domain.DeclinationEvent, 0, len(payloads))
	for _, p := range payloads {
		stats.total++
		obs, err := domain.ParseRawEvent(domain.RawEvent{Value: p})
		if err != nil {
			stats.skipped[skipReason(err)]++
			continue
		}
		obs.GeoSource = "original"
		ev, err := domain.EnrichWithDeclination(obs, settings)
		if errors.Is(err, geomag.ErrResourceUnavailable) {
			return nil, stats, err
		}
		if err != nil {
			stats.skipped[skipReason(err)]++
			continue
		}

		events = append(events, ev)
		stats.enriched++
		stats.advisories[ev.Advisory.String()]++
		if d, ok := ev.Declination.Float(); ok {
			if !stats.haveD || d < stats.minD {
				stats.minD = d
			}
			if !stats.haveD || d > stats.maxD {
				stats.maxD = d
			}
			stats.haveD = true
		}
	}
	return events, stats, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoLocation):
		return "no location"
	case errors.Is(err, domain.ErrInvalidCoordinates):
		return "invalid coordinates"
	case errors.Is(err, geomag.ErrCorruptRecord):
		return "model error"
	}
	return "unparseable"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(w io.Writer, s enrichStats) {
	fmt.Fprintf(w, "events: %s, enriched: %s\n", humanize.Comma(int64(s.total)), humanize.Comma(int64(s.enriched)))
	for _, k := range sortedKeys(s.skipped) {
		fmt.Fprintf(w, "  skipped (%s): %d\n", k, s.skipped[k])
	}
	for _, k := range sortedKeys(s.advisories) {
		fmt.Fprintf(w, "  advisory %s: %d\n", k, s.advisories[k])
	}
	if s.haveD {
		fmt.Fprintf(w, "declination range: %.2f° to %.2f°\n", s.minD, s.maxD)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
