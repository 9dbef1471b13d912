package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/storm-data-geomag/internal/domain"
	"github.com/couchcryptid/storm-data-geomag/internal/geomag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var (
	testModelFile  = filepath.Join("..", "..", "testdata", "TEST.COF")
	testEventsFile = filepath.Join("..", "..", "testdata", "storm_events.json")
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDeclinationCmd_JSON(t *testing.T) {
	out, err := execute(t, "declination", "--model", testModelFile, "--lat", "41.26", "--lon", "-95.94", "--date", "2024-04-26", "--json")
	require.NoError(t, err)

	var got geomag.Report
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	want, err := geomag.Compute(testModelFile, geomag.Query{
		Latitude:  41.26,
		Longitude: -95.94,
		Date:      geomag.DecimalYear(time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, want.Model, got.Model)
	wantD, _ := want.Declination.Float()
	gotD, ok := got.Declination.Float()
	require.True(t, ok)
	assert.InDelta(t, wantD, gotD, 1e-9)
}

func TestDeclinationCmd_Text(t *testing.T) {
	out, err := execute(t, "declination", "--model", testModelFile, "--lat", "64.84", "--lon", "-147.72", "--date", "2023.0", "--geocentric")
	require.NoError(t, err)

	assert.Contains(t, out, "Model:        TEST2020")
	assert.Contains(t, out, "(geocentric)")
	assert.Contains(t, out, "declination")
	assert.Contains(t, out, "correction")
	assert.NotContains(t, out, "warning:")
}

func TestDeclinationCmd_Errors(t *testing.T) {
	_, err := execute(t, "declination", "--model", testModelFile, "--lon", "10")
	require.Error(t, err, "lat is required")

	_, err = execute(t, "declination", "--model", testModelFile, "--lat", "95", "--lon", "10")
	require.ErrorContains(t, err, "out of range")

	for _, alt := range []string{"NaN", "Inf", "-Inf"} {
		_, err = execute(t, "declination", "--model", testModelFile, "--lat", "10", "--lon", "10", "--alt", alt)
		require.ErrorContains(t, err, "not a finite number")
	}

	_, err = execute(t, "declination", "--model", testModelFile, "--lat", "NaN", "--lon", "10")
	require.ErrorContains(t, err, "not a finite number")

	_, err = execute(t, "declination", "--model", testModelFile, "--lat", "10", "--lon", "10", "--date", "soon")
	require.ErrorContains(t, err, "invalid date")

	_, err = execute(t, "declination", "--model", "missing.COF", "--lat", "10", "--lon", "10")
	require.ErrorIs(t, err, geomag.ErrResourceUnavailable)
}

func TestCatalogCmd_Formats(t *testing.T) {
	out, err := execute(t, "catalog", "--model", testModelFile)
	require.NoError(t, err)
	assert.Contains(t, out, "TEST2020")
	assert.Contains(t, out, "1 models, valid 2020.00 to 2025.00")

	out, err = execute(t, "catalog", "--model", testModelFile, "--format", "json")
	require.NoError(t, err)
	var fromJSON geomag.Catalog
	require.NoError(t, json.Unmarshal([]byte(out), &fromJSON))

	out, err = execute(t, "catalog", "--model", testModelFile, "--format", "yaml")
	require.NoError(t, err)
	var fromYAML geomag.Catalog
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))

	assert.Equal(t, fromJSON, fromYAML)
	require.Len(t, fromYAML.Models, 1)
	assert.Equal(t, 2, fromYAML.Models[0].MaxDegree)
	assert.Equal(t, 6, fromYAML.Records)

	_, err = execute(t, "catalog", "--model", testModelFile, "--format", "xml")
	require.ErrorContains(t, err, "unknown format")
}

func TestValidateCmd_Passes(t *testing.T) {
	out, err := execute(t, "validate", "--model", testModelFile)
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
	assert.Contains(t, out, "6 records, 1 models")
	assert.NotContains(t, out, "FAIL")
}

func TestValidateCmd_FailsOnCorruptFile(t *testing.T) {
	data, err := os.ReadFile(testModelFile)
	require.NoError(t, err)
	corrupt := filepath.Join(t.TempDir(), "CORRUPT.COF")
	// Drop the last record's trailing padding so its length is wrong.
	require.NoError(t, os.WriteFile(corrupt, append(data[:len(data)-10], '\n'), 0o644))

	out, err := execute(t, "validate", "--model", corrupt)
	require.Error(t, err)
	assert.Contains(t, out, "Record structure")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "Validation FAILED.")
}

func TestEnrichCmd(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "declinations.json")
	out, err := execute(t, "enrich", "--model", testModelFile, "--in", testEventsFile, "--out", outPath)
	require.NoError(t, err)

	assert.Contains(t, out, "events: 6, enriched: 4")
	assert.Contains(t, out, "skipped (no location): 1")
	assert.Contains(t, out, "skipped (invalid coordinates): 1")
	assert.Contains(t, out, "declination range:")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var events []domain.DeclinationEvent
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 4)

	wantNow := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	for _, ev := range events {
		assert.True(t, wantNow.Equal(ev.ProcessedAt), ev.ID)
		assert.Equal(t, "TEST2020", ev.Model)
	}
}

func TestEnrichCmd_FixedDate(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "declinations.json")
	_, err := execute(t, "enrich", "--model", testModelFile, "--in", testEventsFile, "--out", outPath, "--fixed-date", "2021.5")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var events []domain.DeclinationEvent
	require.NoError(t, json.Unmarshal(data, &events))
	for _, ev := range events {
		assert.InDelta(t, 2021.5, ev.Date, 0, ev.ID)
	}
}

func TestEnrichCmd_MissingModel(t *testing.T) {
	_, err := execute(t, "enrich", "--model", "missing.COF", "--in", testEventsFile, "--out", filepath.Join(t.TempDir(), "x.json"))
	require.ErrorIs(t, err, geomag.ErrResourceUnavailable)
}

func TestEnrichCmd_NonFiniteAltitude(t *testing.T) {
	_, err := execute(t, "enrich", "--model", testModelFile, "--in", testEventsFile, "--out", filepath.Join(t.TempDir(), "x.json"), "--alt", "NaN")
	require.ErrorContains(t, err, "not a finite number")
}
