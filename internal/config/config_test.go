package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Geocoding.ResultLimit)
	assert.Equal(t, 3, cfg.Geocoding.MinQueryLength)
	assert.Equal(t, "in", cfg.Geocoding.CountryCodes)
	assert.Equal(t, 300*time.Millisecond, cfg.Geocoding.DebounceDelay)
	assert.Equal(t, 10*time.Second, cfg.Location.Timeout)
	assert.Equal(t, 0.3, cfg.Pricing.SurgeProbability)
	assert.False(t, cfg.Pricing.Deterministic)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RIDEFARE_SERVER_PORT", ":9000")
	t.Setenv("RIDEFARE_APP_ENV", "development")
	t.Setenv("RIDEFARE_ROUTING_BASE_URL", "http://osrm:5000")
	t.Setenv("RIDEFARE_GEOCODING_DEBOUNCE_DELAY", "150ms")
	t.Setenv("RIDEFARE_PRICING_DETERMINISTIC", "true")
	t.Setenv("RIDEFARE_PRICING_SEED", "42")
	t.Setenv("RIDEFARE_REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "http://osrm:5000", cfg.Routing.BaseURL)
	assert.Equal(t, 150*time.Millisecond, cfg.Geocoding.DebounceDelay)
	assert.True(t, cfg.Pricing.Deterministic)
	assert.Equal(t, int64(42), cfg.Pricing.Seed)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadRejectsInvalidPricing(t *testing.T) {
	t.Setenv("RIDEFARE_PRICING_FARE_JITTER", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fare_jitter")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "negative eta jitter", mutate: func(c *Config) { c.Pricing.ETAJitter = -0.1 }, wantErr: true},
		{name: "surge range inverted", mutate: func(c *Config) { c.Pricing.SurgeMin = 2; c.Pricing.SurgeMax = 1 }, wantErr: true},
		{name: "surge probability above one", mutate: func(c *Config) { c.Pricing.SurgeProbability = 1.1 }, wantErr: true},
		{name: "zero result limit", mutate: func(c *Config) { c.Geocoding.ResultLimit = 0 }, wantErr: true},
		{name: "zero idle ttl", mutate: func(c *Config) { c.Session.IdleTTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
