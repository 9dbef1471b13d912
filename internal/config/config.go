package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Geomagnetic model settings.
	ModelFile  string
	AltitudeKm float64
	// FixedDate, when non-nil, replaces the event time as the target date.
	FixedDate *float64

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Tracing configuration.
	TracingEnabled     bool
	TracingExporter    string
	TracingEndpoint    string
	TracingSampleRatio float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	altitude, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("GEOMAG_ALTITUDE_KM", "0"), 64)
	if err != nil || math.IsNaN(altitude) || math.IsInf(altitude, 0) {
		return nil, errors.New("invalid GEOMAG_ALTITUDE_KM")
	}

	fixedDate, err := parseFixedDate()
	if err != nil {
		return nil, err
	}

	sampleRatio, err := parseSampleRatio()
	if err != nil {
		return nil, err
	}

	mapboxCacheSize := parseMapboxCacheSize()

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "transformed-weather-data"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "geomag-declinations"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-data-geomag"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ModelFile:  sharedcfg.EnvOrDefault("GEOMAG_MODEL_FILE", "data/WMM.COF"),
		AltitudeKm: altitude,
		FixedDate:  fixedDate,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,

		TracingEnabled:     os.Getenv("TRACING_ENABLED") == "true",
		TracingExporter:    sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout"),
		TracingEndpoint:    os.Getenv("TRACING_ENDPOINT"),
		TracingSampleRatio: sampleRatio,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ModelFile == "" {
		return nil, errors.New("GEOMAG_MODEL_FILE is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	switch cfg.TracingExporter {
	case "stdout", "otlp":
	default:
		return nil, fmt.Errorf("invalid TRACING_EXPORTER %q: want stdout or otlp", cfg.TracingExporter)
	}
	if cfg.TracingEnabled && cfg.TracingExporter == "otlp" && cfg.TracingEndpoint == "" {
		return nil, errors.New("TRACING_EXPORTER is otlp but TRACING_ENDPOINT is not set")
	}

	return cfg, nil
}

func parseFixedDate() (*float64, error) {
	s := os.Getenv("GEOMAG_FIXED_DATE")
	if s == "" {
		return nil, nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, errors.New("invalid GEOMAG_FIXED_DATE")
	}
	return &d, nil
}

func parseSampleRatio() (float64, error) {
	r, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("TRACING_SAMPLE_RATIO", "1.0"), 64)
	if err != nil || r < 0 || r > 1 {
		return 0, errors.New("invalid TRACING_SAMPLE_RATIO: must be between 0 and 1")
	}
	return r, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
