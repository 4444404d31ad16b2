package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for key := range defaults {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http://localhost:5000/predict", cfg.PredictionEndpoint)
	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.MapsBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.CollectorInterval)
	assert.Empty(t, cfg.CollectorRoutes)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "production")
	t.Setenv("GOOGLE_MAPS_API_KEY", "abc")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("COLLECTOR_INTERVAL", "1m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "abc", cfg.GoogleMapsAPIKey)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Minute, cfg.CollectorInterval)
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Setenv("PREDICTION_ENDPOINT", "")
	require.NoError(t, os.Unsetenv("PREDICTION_ENDPOINT"))
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PREDICTION_ENDPOINT=http://ml:5000/predict\nPORT=1234\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://ml:5000/predict", cfg.PredictionEndpoint)
	assert.Equal(t, "7000", cfg.Port, "process environment wins over .env")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "0s")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
