package insight

import (
	"context"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

// Analyzer sends building attributes plus an optional photo to a vision model.
type Analyzer interface {
	Analyze(ctx context.Context, attrs map[string]string, photo []byte) (domain.Insights, error)
}

// Panorama describes the street-level camera position nearest to a coordinate.
type Panorama struct {
	Found bool
	Lat   float64
	Lon   float64
}

// ImagerySource fetches directional street-level photos.
type ImagerySource interface {
	Panorama(ctx context.Context, lat, lon float64) (Panorama, error)
	Fetch(ctx context.Context, lat, lon, headingDegrees float64) ([]byte, error)
}
