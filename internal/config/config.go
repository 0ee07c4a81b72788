package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	AccidentsPath   string
	VehiclesPath    string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Map layout settings. Without a token the map falls back to the
	// token-free open-street-map style.
	MapboxToken string
	MapboxStyle string

	ViewCacheSize int

	// Export tool settings.
	KafkaBrokers     []string
	KafkaExportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	viewCacheSize, err := parseViewCacheSize()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxStyle := "open-street-map"
	if mapboxToken != "" {
		mapboxStyle = "light"
	}
	if v := os.Getenv("MAPBOX_STYLE"); v != "" {
		mapboxStyle = v
	}

	cfg := &Config{
		AccidentsPath:   envOrDefaultAllowEmpty("ACCIDENTS_PATH", "accidents2017.csv"),
		VehiclesPath:    envOrDefaultAllowEmpty("VEHICLES_PATH", "vehicles2017.csv"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapboxToken: mapboxToken,
		MapboxStyle: mapboxStyle,

		ViewCacheSize: viewCacheSize,

		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaExportTopic: sharedcfg.EnvOrDefault("KAFKA_EXPORT_TOPIC", "accident-bar-groups"),
	}

	if cfg.AccidentsPath == "" {
		return nil, errors.New("ACCIDENTS_PATH is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaExportTopic == "" {
		return nil, errors.New("KAFKA_EXPORT_TOPIC is required")
	}

	return cfg, nil
}

func parseViewCacheSize() (int, error) {
	s := os.Getenv("VIEW_CACHE_SIZE")
	if s == "" {
		return 256, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid VIEW_CACHE_SIZE: must be a positive integer")
	}
	return n, nil
}

// envOrDefaultAllowEmpty distinguishes an unset variable from one explicitly
// set to "". An empty VEHICLES_PATH disables the optional dataset; an empty
// ACCIDENTS_PATH is rejected by Load.
func envOrDefaultAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
