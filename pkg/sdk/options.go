package insights

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	footprintsPath string
	footprintsData []byte

	maxDistanceMeters float64

	streetViewAPIKey  string
	streetViewBaseURL string

	geminiAPIKey  string
	geminiBaseURL string
	model         string

	retryAttempts   int
	retryBaseDelay  time.Duration
	retryMultiplier float64

	cacheAddr     string
	cachePassword string
	cacheTTL      time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithFootprintsFile loads the footprint dataset from a GeoJSON file.
func WithFootprintsFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.footprintsPath = path
	})
}

// WithFootprintsData loads the footprint dataset from raw GeoJSON bytes.
// Takes precedence over WithFootprintsFile.
func WithFootprintsData(data []byte) Option {
	return optionFunc(func(c *clientConfig) {
		c.footprintsData = data
	})
}

// WithMaxDistance sets the default nearest-building search radius in meters.
// Default: 50.
func WithMaxDistance(meters float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxDistanceMeters = meters
	})
}

// WithStreetView enables Street View imagery with the given API key.
// Without it, insights are generated from building attributes only.
func WithStreetView(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.streetViewAPIKey = apiKey
	})
}

// WithStreetViewBaseURL overrides the Street View Static API endpoint.
func WithStreetViewBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.streetViewBaseURL = baseURL
	})
}

// WithGemini sets the vision model API key. Required for Insights calls.
func WithGemini(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.geminiAPIKey = apiKey
	})
}

// WithGeminiBaseURL overrides the OpenAI-compatible endpoint.
func WithGeminiBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.geminiBaseURL = baseURL
	})
}

// WithModel sets the vision model name. Default: gemini-2.5-flash.
func WithModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = model
	})
}

// WithRetry configures the vision model retry policy.
// Defaults: 3 attempts, 1s base delay, multiplier 2.
func WithRetry(attempts int, baseDelay time.Duration, multiplier float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.retryAttempts = attempts
		c.retryBaseDelay = baseDelay
		c.retryMultiplier = multiplier
	})
}

// WithValkeyCache caches successful insight responses in a Valkey instance.
func WithValkeyCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddr = addr
		c.cachePassword = password
	})
}

// WithCacheTTL sets the insight cache entry lifetime. Default: 24h.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
