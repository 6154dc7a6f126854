package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Synoptic observation API configuration.
	SynopticToken   string
	SynopticBaseURL string
	SynopticTimeout time.Duration

	// Archive retrieval configuration.
	DownloadTimeout time.Duration
	ProbeCacheSize  int
	DestDir         string

	// Mirror loop configuration.
	MirrorDomain   string
	MirrorProducts []string
	BiasCorrected  bool
	PollInterval   time.Duration

	// Kafka artifact notifications.
	KafkaBrokers  []string
	KafkaTopic    string
	NotifyEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	synopticTimeout, err := parseDuration("SYNOPTIC_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	downloadTimeout, err := parseDuration("DOWNLOAD_TIMEOUT", "5m")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	probeCacheSize, err := parsePositiveInt("PROBE_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	brokers := parseList(os.Getenv("KAFKA_BROKERS"))
	notifyEnabled := len(brokers) > 0
	if v := os.Getenv("NOTIFY_ENABLED"); v != "" {
		notifyEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SynopticToken:   os.Getenv("SYNOPTIC_TOKEN"),
		SynopticBaseURL: envOrDefault("SYNOPTIC_BASE_URL", "https://api.synopticdata.com/v2"),
		SynopticTimeout: synopticTimeout,

		DownloadTimeout: downloadTimeout,
		ProbeCacheSize:  probeCacheSize,
		DestDir:         envOrDefault("DEST_DIR", "data"),

		MirrorDomain:   envOrDefault("MIRROR_DOMAIN", "conus"),
		MirrorProducts: parseList(envOrDefault("MIRROR_PRODUCTS", "max_8hr_o3,ave_1hr_pm25")),
		BiasCorrected:  envOrDefault("BIAS_CORRECTED", "true") == "true",
		PollInterval:   pollInterval,

		KafkaBrokers:  brokers,
		KafkaTopic:    envOrDefault("KAFKA_TOPIC", "aqm-artifacts"),
		NotifyEnabled: notifyEnabled,
	}

	if len(cfg.MirrorProducts) == 0 {
		return nil, errors.New("MIRROR_PRODUCTS must list at least one product")
	}
	if cfg.NotifyEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("NOTIFY_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.NotifyEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when notifications are enabled")
	}

	return cfg, nil
}

// envOrDefault returns the value of the environment variable or a fallback.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
