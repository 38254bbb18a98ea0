package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/db"
	dbValkey "github.com/sathizz7/Street-View-Analysis/internal/db/valkey"
	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	"github.com/sathizz7/Street-View-Analysis/internal/metrics"
	"github.com/sathizz7/Street-View-Analysis/internal/repository/footprint"
	"github.com/sathizz7/Street-View-Analysis/internal/repository/insightcache"
	"github.com/sathizz7/Street-View-Analysis/internal/transport/gemini"
	"github.com/sathizz7/Street-View-Analysis/internal/transport/streetview"
	healthuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/health"
	insightuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/insight"
	resolveuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/resolve"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultMaxDistance      = 50.0
	defaultModel            = "gemini-2.5-flash"
	defaultGeminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultStreetViewURL    = "https://maps.googleapis.com/maps/api/streetview"
	defaultCacheTTL         = 24 * time.Hour
)

// Internal interfaces for substitution in tests.
type resolveUseCase interface {
	Resolve(click domain.ClickPoint, maxDistanceMeters float64) (domain.Resolution, error)
	Collection() domain.FootprintCollection
}

type insightUseCase interface {
	Generate(ctx context.Context, index int, opts insightuc.Options) (insightuc.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the building insights SDK entry point.
type Client struct {
	store       db.Store
	resolveSvc  resolveUseCase
	insightSvc  insightUseCase
	healthSvc   healthUseCase
	maxDistance float64
	obs         *observer
}

// New creates a Client and loads the footprint dataset.
// The provided context is used for the cache readiness check, if a cache
// is configured.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		maxDistanceMeters: defaultMaxDistance,
		model:             defaultModel,
		geminiBaseURL:     defaultGeminiBaseURL,
		streetViewBaseURL: defaultStreetViewURL,
		retryAttempts:     3,
		retryBaseDelay:    time.Second,
		retryMultiplier:   2,
		cacheTTL:          defaultCacheTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.footprintsPath == "" && len(cfg.footprintsData) == 0 {
		return nil, errors.New(
			"insights: footprint dataset required (use WithFootprintsFile or WithFootprintsData)")
	}

	// Internal services log through zap; the SDK surface stays on slog.
	zlog := zap.NewNop()

	footprints, err := loadFootprints(cfg, zlog)
	if err != nil {
		return nil, fmt.Errorf("insights: load footprints: %w", err)
	}

	var store db.Store
	if cfg.cacheAddr != "" {
		valkeyStore, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    []string{cfg.cacheAddr},
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("insights: create cache store: %w", err)
		}
		if err := valkeyStore.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			valkeyStore.Close()
			return nil, fmt.Errorf("insights: cache not ready: %w", err)
		}
		store = valkeyStore
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	return wireClient(footprints, store, cfg, obs, zlog), nil
}

func loadFootprints(cfg *clientConfig, zlog *zap.Logger) (domain.FootprintCollection, error) {
	repo := footprint.New(zlog)
	if len(cfg.footprintsData) > 0 {
		return repo.Parse(cfg.footprintsData)
	}
	return repo.Load(cfg.footprintsPath)
}

func wireClient(
	footprints domain.FootprintCollection,
	store db.Store,
	cfg *clientConfig,
	obs *observer,
	zlog *zap.Logger,
) *Client {
	var analyzer insightuc.Analyzer = gemini.NewAnalyzer(&gemini.Config{
		APIKey:  cfg.geminiAPIKey,
		BaseURL: cfg.geminiBaseURL,
		Model:   cfg.model,
		Logger:  zlog,
	})
	if store != nil {
		analyzer = insightcache.New(analyzer, store, cfg.cacheTTL, metrics.InsightCacheTotal, zlog)
	}

	var imagery insightuc.ImagerySource
	if cfg.streetViewAPIKey != "" {
		imagery = &streetViewImagery{client: streetview.NewClient(&streetview.Config{
			APIKey:     cfg.streetViewAPIKey,
			BaseURL:    cfg.streetViewBaseURL,
			Size:       "640x640",
			FOV:        90,
			TimeoutSec: 15,
			Logger:     zlog,
		})}
	}

	retry := insightuc.RetryPolicy{
		MaxAttempts: cfg.retryAttempts,
		BaseDelay:   cfg.retryBaseDelay,
		Multiplier:  cfg.retryMultiplier,
	}

	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}

	return &Client{
		store:       store,
		resolveSvc:  resolveuc.New(footprints, zlog),
		insightSvc:  insightuc.New(footprints, imagery, analyzer, retry, zlog),
		healthSvc:   healthuc.New(footprints, cachePinger),
		maxDistance: cfg.maxDistanceMeters,
		obs:         obs,
	}
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Count returns the number of buildings in the loaded dataset.
func (c *Client) Count() int {
	return c.resolveSvc.Collection().Len()
}

// Building returns the building at the given positional index.
func (c *Client) Building(index int) (Building, error) {
	b, ok := c.resolveSvc.Collection().At(index)
	if !ok {
		return Building{}, ErrBuildingNotFound
	}
	return buildingFromDomain(b), nil
}

// Resolve finds the building containing the coordinate, or the closest one
// within the configured default search radius.
func (c *Client) Resolve(lat, lon float64) (Resolution, error) {
	return c.ResolveWithin(lat, lon, c.maxDistance)
}

// ResolveWithin is Resolve with an explicit search radius in meters.
func (c *Client) ResolveWithin(lat, lon, maxDistanceMeters float64) (res Resolution, err error) {
	start := time.Now()
	defer func() { c.obs.observe("resolve", start, err) }()

	r, err := c.resolveSvc.Resolve(domain.ClickPoint{Lat: lat, Lon: lon}, maxDistanceMeters)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve: %w", err)
	}
	return resolutionFromDomain(r), nil
}

// InsightOption adjusts a single Insights call.
type InsightOption func(*insightuc.Options)

// TextOnly disables Street View imagery for this call.
func TextOnly() InsightOption {
	return func(o *insightuc.Options) { o.IncludeImagery = false }
}

// WithHeadings captures photos at fixed camera headings instead of aiming
// a single shot from the nearest panorama.
func WithHeadings(headings ...float64) InsightOption {
	return func(o *insightuc.Options) { o.Headings = headings }
}

// Insights generates AI insights for the building at the given index.
func (c *Client) Insights(ctx context.Context, index int, opts ...InsightOption) (result InsightResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("insights", start, err) }()

	ucOpts := insightuc.Options{IncludeImagery: true}
	for _, o := range opts {
		o(&ucOpts)
	}

	r, err := c.insightSvc.Generate(ctx, index, ucOpts)
	if err != nil {
		return InsightResult{}, fmt.Errorf("insights: %w", err)
	}
	return insightResultFromDomain(r), nil
}

// streetViewImagery adapts streetview.Client to insight.ImagerySource.
type streetViewImagery struct {
	client *streetview.Client
}

func (s *streetViewImagery) Panorama(ctx context.Context, lat, lon float64) (insightuc.Panorama, error) {
	meta, err := s.client.Metadata(ctx, lat, lon)
	if err != nil {
		return insightuc.Panorama{}, fmt.Errorf("panorama lookup: %w", err)
	}
	return insightuc.Panorama{
		Found: meta.OK(),
		Lat:   meta.Location.Lat,
		Lon:   meta.Location.Lng,
	}, nil
}

func (s *streetViewImagery) Fetch(ctx context.Context, lat, lon, heading float64) ([]byte, error) {
	return s.client.Fetch(ctx, lat, lon, heading) //nolint:wrapcheck // thin adapter
}
