// Package insight orchestrates street imagery collection and vision model
// analysis for a selected building.
package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

// Service generates insights for buildings of the loaded collection.
type Service struct {
	footprints domain.FootprintCollection
	imagery    ImagerySource
	analyzer   Analyzer
	retry      RetryPolicy
	logger     *zap.Logger
}

// New creates an insight service. imagery may be nil when no Street View
// access is configured; insights then fall back to text-only analysis.
func New(
	footprints domain.FootprintCollection,
	imagery ImagerySource,
	analyzer Analyzer,
	retry RetryPolicy,
	logger *zap.Logger,
) *Service {
	return &Service{
		footprints: footprints,
		imagery:    imagery,
		analyzer:   analyzer,
		retry:      retry,
		logger:     logger,
	}
}

// Options controls a single insight generation request.
type Options struct {
	// IncludeImagery enables Street View photo collection.
	IncludeImagery bool
	// Headings are camera headings in degrees to capture from the building
	// center. Empty means: aim a single shot at the building from the
	// nearest panorama position, derived via the bearing between the two.
	Headings []float64
}

// Result is a generated insight set plus the imagery that informed it.
type Result struct {
	Insights domain.Insights
	Photos   []domain.Photo
	// PanoramaDistanceMeters is the haversine distance from the panorama
	// camera to the building center; zero when no panorama was involved.
	PanoramaDistanceMeters float64
	Attempts               int
}

// Generate produces insights for the building at index. The vision model
// call is retried with exponential backoff; after the attempts are exhausted
// the last provider error is returned for the transport layer to surface as
// a best-effort error payload.
func (s *Service) Generate(ctx context.Context, index int, opts Options) (Result, error) {
	building, ok := s.footprints.At(index)
	if !ok {
		return Result{}, domain.ErrBuildingNotFound
	}

	var result Result
	if opts.IncludeImagery && s.imagery != nil {
		result.Photos, result.PanoramaDistanceMeters = s.collectPhotos(ctx, building, opts.Headings)
	}

	var photo []byte
	if len(result.Photos) > 0 {
		photo = result.Photos[0].Bytes
	}

	insights, attempts, err := s.analyzeWithRetry(ctx, building.Attributes, photo)
	result.Attempts = attempts
	if err != nil {
		return result, err
	}

	result.Insights = insights
	return result, nil
}

// collectPhotos fetches street-level photos for the building. Individual
// fetch failures are logged and skipped; imagery is optional input for the
// analysis, never a hard requirement.
func (s *Service) collectPhotos(
	ctx context.Context, building domain.Building, headings []float64,
) (photos []domain.Photo, panoramaDistance float64) {
	if len(headings) == 0 {
		// Aim a single shot from the nearest panorama at the building.
		shot, err := AimFromPanorama(ctx, s.imagery, building)
		if err != nil {
			s.logger.Warn("Panorama lookup failed", zap.Error(err))
		}
		if bytes, err := s.imagery.Fetch(ctx, shot.Lat, shot.Lon, shot.HeadingDegrees); err == nil {
			photos = append(photos, domain.Photo{HeadingDegrees: shot.HeadingDegrees, Bytes: bytes})
		} else if !errors.Is(err, domain.ErrImageryUnavailable) {
			s.logger.Warn("Street view fetch failed", zap.Error(err))
		}
		return photos, shot.PanoramaDistanceMeters
	}

	centerLat, centerLon := building.Center()
	for _, heading := range headings {
		bytes, err := s.imagery.Fetch(ctx, centerLat, centerLon, heading)
		if err != nil {
			if !errors.Is(err, domain.ErrImageryUnavailable) {
				s.logger.Warn("Street view fetch failed",
					zap.Float64("heading", heading),
					zap.Error(err),
				)
			}
			continue
		}
		photos = append(photos, domain.Photo{HeadingDegrees: heading, Bytes: bytes})
	}
	return photos, panoramaDistance
}

func (s *Service) analyzeWithRetry(
	ctx context.Context, attrs map[string]string, photo []byte,
) (domain.Insights, int, error) {
	var lastErr error

	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		insights, err := s.analyzer.Analyze(ctx, attrs, photo)
		if err == nil {
			return insights, attempt + 1, nil
		}
		lastErr = err

		if attempt == s.retry.MaxAttempts-1 {
			break
		}

		delay := s.retry.Delay(attempt)
		s.logger.Warn("Insight generation failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Insights{}, attempt + 1, fmt.Errorf("insight generation canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return domain.Insights{}, s.retry.MaxAttempts,
		fmt.Errorf("generate insights after %d attempts: %w", s.retry.MaxAttempts, lastErr)
}
