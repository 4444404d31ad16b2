package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings, read from the environment and an optional .env file
type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"GO_ENV"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	GoogleMapsAPIKey   string        `mapstructure:"GOOGLE_MAPS_API_KEY"`
	MapsBaseURL        string        `mapstructure:"MAPS_BASE_URL"`
	PredictionEndpoint string        `mapstructure:"PREDICTION_ENDPOINT"`
	HTTPTimeout        time.Duration `mapstructure:"HTTP_TIMEOUT"`
	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`
	CollectorRoutes    string        `mapstructure:"COLLECTOR_ROUTES_FILE"`
	CollectorInterval  time.Duration `mapstructure:"COLLECTOR_INTERVAL"`
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"GO_ENV":                "development",
	"DATABASE_URL":          "",
	"REDIS_URL":             "",
	"GOOGLE_MAPS_API_KEY":   "",
	"MAPS_BASE_URL":         "https://maps.googleapis.com/maps/api",
	"PREDICTION_ENDPOINT":   "http://localhost:5000/predict",
	"HTTP_TIMEOUT":          "10s",
	"SESSION_TTL":           "30m",
	"COLLECTOR_ROUTES_FILE": "",
	"COLLECTOR_INTERVAL":    "5m",
}

// Load reads configuration. Values from the process environment take
// precedence over the given .env files; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv.Load never overrides variables that are already set
		_ = godotenv.Load(f)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("config: HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
