package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "transformed-weather-data", cfg.KafkaSourceTopic)
	assert.Equal(t, "geomag-declinations", cfg.KafkaSinkTopic)
	assert.Equal(t, "storm-data-geomag", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.Equal(t, "data/WMM.COF", cfg.ModelFile)
	assert.InDelta(t, 0.0, cfg.AltitudeKm, 0)
	assert.Nil(t, cfg.FixedDate)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, "stdout", cfg.TracingExporter)
	assert.InDelta(t, 1.0, cfg.TracingSampleRatio, 0)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("GEOMAG_MODEL_FILE", "/srv/models/IGRF13.COF")
	t.Setenv("GEOMAG_ALTITUDE_KM", "1.5")
	t.Setenv("GEOMAG_FIXED_DATE", "2024.5")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("TRACING_ENDPOINT", "collector:4317")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, "/srv/models/IGRF13.COF", cfg.ModelFile)
	assert.InDelta(t, 1.5, cfg.AltitudeKm, 0)
	require.NotNil(t, cfg.FixedDate)
	assert.InDelta(t, 2024.5, *cfg.FixedDate, 0)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "otlp", cfg.TracingExporter)
	assert.Equal(t, "collector:4317", cfg.TracingEndpoint)
	assert.InDelta(t, 0.25, cfg.TracingSampleRatio, 0)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_BatchSizeTooLarge(t *testing.T) {
	t.Setenv("BATCH_SIZE", "9999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidMapboxTimeout(t *testing.T) {
	t.Setenv("MAPBOX_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TIMEOUT")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_InvalidAltitude(t *testing.T) {
	for _, v := range []string{"high", "NaN", "Inf"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("GEOMAG_ALTITUDE_KM", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "GEOMAG_ALTITUDE_KM")
		})
	}
}

func TestLoad_InvalidFixedDate(t *testing.T) {
	t.Setenv("GEOMAG_FIXED_DATE", "2024-06-01")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOMAG_FIXED_DATE")
}

func TestLoad_NonFiniteFixedDate(t *testing.T) {
	t.Setenv("GEOMAG_FIXED_DATE", "NaN")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOMAG_FIXED_DATE")
}

func TestLoad_InvalidTracingExporter(t *testing.T) {
	t.Setenv("TRACING_EXPORTER", "zipkin")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACING_EXPORTER")
}

func TestLoad_OTLPWithoutEndpoint(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "otlp")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACING_ENDPOINT")
}

func TestLoad_InvalidSampleRatio(t *testing.T) {
	for _, v := range []string{"1.5", "-0.1", "half"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TRACING_SAMPLE_RATIO", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "TRACING_SAMPLE_RATIO")
		})
	}
}
