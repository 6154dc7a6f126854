package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Empty(t, cfg.SynopticToken)
	assert.Equal(t, "https://api.synopticdata.com/v2", cfg.SynopticBaseURL)
	assert.Equal(t, 30*time.Second, cfg.SynopticTimeout)

	assert.Equal(t, 5*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 256, cfg.ProbeCacheSize)
	assert.Equal(t, "data", cfg.DestDir)

	assert.Equal(t, "conus", cfg.MirrorDomain)
	assert.Equal(t, []string{"max_8hr_o3", "ave_1hr_pm25"}, cfg.MirrorProducts)
	assert.True(t, cfg.BiasCorrected)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)

	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "aqm-artifacts", cfg.KafkaTopic)
	assert.False(t, cfg.NotifyEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SYNOPTIC_TOKEN", "tok-123")
	t.Setenv("SYNOPTIC_TIMEOUT", "10s")
	t.Setenv("DOWNLOAD_TIMEOUT", "2m")
	t.Setenv("PROBE_CACHE_SIZE", "64")
	t.Setenv("DEST_DIR", "/var/lib/aqm")
	t.Setenv("MIRROR_DOMAIN", "alaska")
	t.Setenv("MIRROR_PRODUCTS", "max_8hr_o3, ave_1hr_o3")
	t.Setenv("BIAS_CORRECTED", "false")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-artifacts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "tok-123", cfg.SynopticToken)
	assert.Equal(t, 10*time.Second, cfg.SynopticTimeout)
	assert.Equal(t, 2*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 64, cfg.ProbeCacheSize)
	assert.Equal(t, "/var/lib/aqm", cfg.DestDir)
	assert.Equal(t, "alaska", cfg.MirrorDomain)
	assert.Equal(t, []string{"max_8hr_o3", "ave_1hr_o3"}, cfg.MirrorProducts)
	assert.False(t, cfg.BiasCorrected)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-artifacts", cfg.KafkaTopic)
	assert.True(t, cfg.NotifyEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativePollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "-1m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_InvalidSynopticTimeout(t *testing.T) {
	t.Setenv("SYNOPTIC_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNOPTIC_TIMEOUT")
}

func TestLoad_InvalidProbeCacheSize(t *testing.T) {
	t.Setenv("PROBE_CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROBE_CACHE_SIZE")
}

func TestLoad_EmptyMirrorProducts(t *testing.T) {
	t.Setenv("MIRROR_PRODUCTS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIRROR_PRODUCTS")
}

func TestLoad_NotifyEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("NOTIFY_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_BrokersImplyNotifyEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.NotifyEnabled)
}

func TestLoad_NotifyExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	t.Setenv("NOTIFY_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.NotifyEnabled)
}
