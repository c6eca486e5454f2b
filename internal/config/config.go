// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note — Configuration Management:
// Defaults live in NewDefaultConfig as plain struct literals, which keeps them
// readable and compile-checked. Load then overlays environment variables using
// "github.com/spf13/viper": every default is registered as a viper key, so
// AutomaticEnv can find a matching RIDEFARE_* variable for each of them.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// RIDEFARE_SERVER_PORT or RIDEFARE_PRICING_DETERMINISTIC.
const EnvPrefix = "RIDEFARE"

// Config is the top-level configuration container.
type Config struct {
	AppEnv    string          `mapstructure:"app_env"`
	Server    ServerConfig    `mapstructure:"server"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Location  LocationConfig  `mapstructure:"location"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// GeocodingConfig points at a Nominatim-compatible service.
type GeocodingConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	CountryCodes   string        `mapstructure:"country_codes"`
	ResultLimit    int           `mapstructure:"result_limit"`
	MinQueryLength int           `mapstructure:"min_query_length"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	DebounceDelay  time.Duration `mapstructure:"debounce_delay"`
}

// RoutingConfig points at an OSRM-compatible service.
type RoutingConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Profile string        `mapstructure:"profile"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LocationConfig bounds device position acquisition.
type LocationConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// PricingConfig controls the randomized parts of fare estimation. The rate
// card itself is not configurable here; see utils.DefaultRateTable.
//
// Quotes are jittered by a multiplier drawn from [1-FareJitter, 1+FareJitter]
// (and likewise for ETA). With probability SurgeProbability a surge multiplier
// in [SurgeMin, SurgeMax) is attached. Deterministic turns all of that off.
// A non-zero Seed makes the random draws reproducible.
type PricingConfig struct {
	FareJitter       float64 `mapstructure:"fare_jitter"`
	ETAJitter        float64 `mapstructure:"eta_jitter"`
	SurgeProbability float64 `mapstructure:"surge_probability"`
	SurgeMin         float64 `mapstructure:"surge_min"`
	SurgeMax         float64 `mapstructure:"surge_max"`
	Deterministic    bool    `mapstructure:"deterministic"`
	Seed             int64   `mapstructure:"seed"`
}

// SessionConfig controls in-memory trip sessions.
type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RedisConfig enables the cross-instance stream relay. An empty Addr keeps
// fan-out local to the process.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NewDefaultConfig returns a Config populated with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		AppEnv: "production",
		Server: ServerConfig{
			Port:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   15 * time.Second,
			AllowedOrigins: []string{"http://*", "https://*"},
		},
		Geocoding: GeocodingConfig{
			BaseURL:        "https://nominatim.openstreetmap.org",
			CountryCodes:   "in",
			ResultLimit:    5,
			MinQueryLength: 3,
			UserAgent:      "ridefare/1.0",
			Timeout:        8 * time.Second,
			DebounceDelay:  300 * time.Millisecond,
		},
		Routing: RoutingConfig{
			BaseURL: "https://router.project-osrm.org",
			Profile: "driving",
			Timeout: 10 * time.Second,
		},
		Location: LocationConfig{
			Timeout: 10 * time.Second,
		},
		Pricing: PricingConfig{
			FareJitter:       0.10,
			ETAJitter:        0.15,
			SurgeProbability: 0.3,
			SurgeMin:         1.2,
			SurgeMax:         1.7,
		},
		Session: SessionConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Load builds the default config and overlays RIDEFARE_* environment
// variables on top of it.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	defaults := NewDefaultConfig()
	registerDefaults(v, defaults)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func registerDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("app_env", d.AppEnv)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)

	v.SetDefault("geocoding.base_url", d.Geocoding.BaseURL)
	v.SetDefault("geocoding.country_codes", d.Geocoding.CountryCodes)
	v.SetDefault("geocoding.result_limit", d.Geocoding.ResultLimit)
	v.SetDefault("geocoding.min_query_length", d.Geocoding.MinQueryLength)
	v.SetDefault("geocoding.user_agent", d.Geocoding.UserAgent)
	v.SetDefault("geocoding.timeout", d.Geocoding.Timeout)
	v.SetDefault("geocoding.debounce_delay", d.Geocoding.DebounceDelay)

	v.SetDefault("routing.base_url", d.Routing.BaseURL)
	v.SetDefault("routing.profile", d.Routing.Profile)
	v.SetDefault("routing.timeout", d.Routing.Timeout)

	v.SetDefault("location.timeout", d.Location.Timeout)

	v.SetDefault("pricing.fare_jitter", d.Pricing.FareJitter)
	v.SetDefault("pricing.eta_jitter", d.Pricing.ETAJitter)
	v.SetDefault("pricing.surge_probability", d.Pricing.SurgeProbability)
	v.SetDefault("pricing.surge_min", d.Pricing.SurgeMin)
	v.SetDefault("pricing.surge_max", d.Pricing.SurgeMax)
	v.SetDefault("pricing.deterministic", d.Pricing.Deterministic)
	v.SetDefault("pricing.seed", d.Pricing.Seed)

	v.SetDefault("session.idle_ttl", d.Session.IdleTTL)
	v.SetDefault("session.sweep_interval", d.Session.SweepInterval)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
}

// Validate rejects values that would make the pricing or session settings
// meaningless.
func (c *Config) Validate() error {
	p := c.Pricing
	switch {
	case p.FareJitter < 0 || p.FareJitter >= 1:
		return fmt.Errorf("pricing.fare_jitter must be in [0,1), got %v", p.FareJitter)
	case p.ETAJitter < 0 || p.ETAJitter >= 1:
		return fmt.Errorf("pricing.eta_jitter must be in [0,1), got %v", p.ETAJitter)
	case p.SurgeProbability < 0 || p.SurgeProbability > 1:
		return fmt.Errorf("pricing.surge_probability must be in [0,1], got %v", p.SurgeProbability)
	case p.SurgeMax < p.SurgeMin:
		return fmt.Errorf("pricing.surge_max (%v) is below surge_min (%v)", p.SurgeMax, p.SurgeMin)
	case c.Geocoding.MinQueryLength < 0 || c.Geocoding.ResultLimit <= 0:
		return fmt.Errorf("geocoding limits must be positive")
	case c.Session.IdleTTL <= 0 || c.Session.SweepInterval <= 0:
		return fmt.Errorf("session durations must be positive")
	}
	return nil
}

// IsDevelopment reports whether the app runs with developer-friendly logging.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}
