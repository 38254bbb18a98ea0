// Package streetview fetches directional street-level photos from the
// Google Street View Static API.
package streetview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	"github.com/sathizz7/Street-View-Analysis/internal/metrics"
)

// Config holds Street View API settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Size       string
	FOV        int
	Pitch      int
	TimeoutSec int
	Logger     *zap.Logger
}

// Client calls the Street View Static API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	size       string
	fov        int
	pitch      int
	logger     *zap.Logger
}

// NewClient creates a Street View client.
func NewClient(cfg *Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		size:       cfg.Size,
		fov:        cfg.FOV,
		pitch:      cfg.Pitch,
		logger:     cfg.Logger,
	}
}

// Metadata describes the panorama nearest to a location.
type Metadata struct {
	Status   string `json:"status"`
	PanoID   string `json:"pano_id"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

// OK reports whether a panorama exists for the queried location.
func (m Metadata) OK() bool { return m.Status == "OK" }

// Metadata queries panorama metadata for a coordinate. The metadata endpoint
// is free of charge, so it is always consulted before fetching images.
func (c *Client) Metadata(ctx context.Context, lat, lon float64) (Metadata, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("key", c.apiKey)

	start := time.Now()
	body, status, err := c.get(ctx, c.baseURL+"/metadata", params)
	metrics.ImageryRequestDuration.WithLabelValues("metadata").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ImageryRequestsTotal.WithLabelValues("metadata", "error").Inc()
		return Metadata{}, fmt.Errorf("street view metadata: %w", err)
	}
	if status != http.StatusOK {
		metrics.ImageryRequestsTotal.WithLabelValues("metadata", "error").Inc()
		return Metadata{}, fmt.Errorf("street view metadata: unexpected status %d: %w",
			status, domain.ErrImageryUnavailable)
	}

	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		metrics.ImageryRequestsTotal.WithLabelValues("metadata", "error").Inc()
		return Metadata{}, fmt.Errorf("street view metadata: parse response: %w", err)
	}

	metrics.ImageryRequestsTotal.WithLabelValues("metadata", "success").Inc()
	return meta, nil
}

// Fetch retrieves a single outdoor photo at the given coordinate and camera
// heading (0=N, 90=E, 180=S, 270=W). Returns domain.ErrImageryUnavailable
// when no imagery exists for the location.
func (c *Client) Fetch(ctx context.Context, lat, lon, headingDegrees float64) ([]byte, error) {
	params := url.Values{}
	params.Set("size", c.size)
	params.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("heading", strconv.FormatFloat(headingDegrees, 'f', -1, 64))
	params.Set("pitch", strconv.Itoa(c.pitch))
	params.Set("fov", strconv.Itoa(c.fov))
	params.Set("source", "outdoor")
	params.Set("key", c.apiKey)

	start := time.Now()
	body, status, err := c.get(ctx, c.baseURL, params)
	metrics.ImageryRequestDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ImageryRequestsTotal.WithLabelValues("image", "error").Inc()
		return nil, fmt.Errorf("street view image: %w", err)
	}
	if status != http.StatusOK {
		metrics.ImageryRequestsTotal.WithLabelValues("image", "unavailable").Inc()
		c.logger.Debug("Street view image unavailable",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Float64("heading", headingDegrees),
			zap.Int("status", status),
		)
		return nil, fmt.Errorf("street view image: status %d: %w", status, domain.ErrImageryUnavailable)
	}

	metrics.ImageryRequestsTotal.WithLabelValues("image", "success").Inc()
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
