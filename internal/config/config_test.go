package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "2024-01", cfg.Dataset.Month)
	assert.Equal(t, "taxi_zone_lookup.csv", cfg.Dataset.ZoneFile)
	assert.Equal(t, 10000, cfg.Dataset.SampleSize)
	assert.Equal(t, int64(42), cfg.Dataset.SampleSeed)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("TAXI_SERVER_PORT", "9090")
	t.Setenv("TAXI_DATASET_MONTH", "2024-03")
	t.Setenv("TAXI_DATASET_SAMPLE_SIZE", "500")
	t.Setenv("TAXI_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "2024-03", cfg.Dataset.Month)
	assert.Equal(t, 500, cfg.Dataset.SampleSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched values keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(42), cfg.Dataset.SampleSeed)
}

func TestLoad_ResolvesPaths(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Paths.ExecutableDir)
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.WebDir, cfg.Paths.LogsDir} {
		assert.True(t, filepath.IsAbs(dir), "expected absolute path, got %q", dir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "non-positive read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "missing month",
			mutate:  func(c *Config) { c.Dataset.Month = "" },
			wantErr: "month must be set",
		},
		{
			name:    "malformed month",
			mutate:  func(c *Config) { c.Dataset.Month = "Jan-2024" },
			wantErr: "invalid dataset month",
		},
		{
			name:    "non-positive sample size",
			mutate:  func(c *Config) { c.Dataset.SampleSize = 0 },
			wantErr: "sample size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestTripFileName(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "yellow_tripdata_2024-01.parquet", cfg.TripFileName())

	cfg.Dataset.TripFile = "custom.parquet"
	assert.Equal(t, "custom.parquet", cfg.TripFileName())
}
