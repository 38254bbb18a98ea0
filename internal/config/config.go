package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the insightd API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Data       DataConfig       `yaml:"data"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	StreetView StreetViewConfig `yaml:"streetview"`
	Insights   InsightsConfig   `yaml:"insights"`
	Cache      CacheConfig      `yaml:"cache"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DataConfig holds the footprint dataset location.
type DataConfig struct {
	FootprintsPath string `yaml:"footprints_path"`
}

// ResolverConfig holds building resolution settings. Distances are meters.
type ResolverConfig struct {
	DefaultMaxDistance float64 `yaml:"default_max_distance_m"`
	MaxDistanceCap     float64 `yaml:"max_distance_cap_m"`
}

// StreetViewConfig holds Street View Static API settings.
type StreetViewConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Size       string `yaml:"size"`
	FOV        int    `yaml:"fov"`
	Pitch      int    `yaml:"pitch"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetryConfig holds the retry policy for the vision model boundary.
type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMS int     `yaml:"base_delay_ms"`
	Multiplier  float64 `yaml:"multiplier"`
}

// InsightsConfig holds vision model provider settings.
type InsightsConfig struct {
	APIKey  string      `yaml:"api_key"`
	BaseURL string      `yaml:"base_url"`
	Model   string      `yaml:"model"`
	Retry   RetryConfig `yaml:"retry"`
}

// CacheConfig holds the optional insight response cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Insight generation waits on the vision model; give writes headroom.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Resolver.DefaultMaxDistance <= 0 {
		c.Resolver.DefaultMaxDistance = 50
	}
	if c.Resolver.MaxDistanceCap <= 0 {
		c.Resolver.MaxDistanceCap = 200
	}
	if c.StreetView.BaseURL == "" {
		c.StreetView.BaseURL = "https://maps.googleapis.com/maps/api/streetview"
	}
	if c.StreetView.Size == "" {
		c.StreetView.Size = "640x640"
	}
	if c.StreetView.FOV <= 0 {
		c.StreetView.FOV = 90
	}
	if c.StreetView.TimeoutSec <= 0 {
		c.StreetView.TimeoutSec = 15
	}
	if c.Insights.BaseURL == "" {
		c.Insights.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.Insights.Model == "" {
		c.Insights.Model = "gemini-2.5-flash"
	}
	if c.Insights.Retry.MaxAttempts <= 0 {
		c.Insights.Retry.MaxAttempts = 3
	}
	if c.Insights.Retry.BaseDelayMS <= 0 {
		c.Insights.Retry.BaseDelayMS = 1000
	}
	if c.Insights.Retry.Multiplier <= 0 {
		c.Insights.Retry.Multiplier = 2
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Data.FootprintsPath == "" {
		return fmt.Errorf("data.footprints_path is required")
	}
	if c.Resolver.DefaultMaxDistance > c.Resolver.MaxDistanceCap {
		return fmt.Errorf(
			"resolver.default_max_distance_m %.0f exceeds resolver.max_distance_cap_m %.0f",
			c.Resolver.DefaultMaxDistance, c.Resolver.MaxDistanceCap,
		)
	}
	if c.Insights.Retry.Multiplier < 1 {
		return fmt.Errorf("insights.retry.multiplier must be >= 1, got %g", c.Insights.Retry.Multiplier)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled is true")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
