// Package resolve turns a clicked map coordinate into a building selection.
package resolve

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	"github.com/sathizz7/Street-View-Analysis/internal/domain/geo"
)

// Service resolves click points against the immutable footprint collection.
// Every query is a pure function of its inputs; the service carries no state
// across calls and is safe for concurrent use.
type Service struct {
	footprints domain.FootprintCollection
	logger     *zap.Logger
}

// New creates a resolution service over a loaded collection.
func New(footprints domain.FootprintCollection, logger *zap.Logger) *Service {
	return &Service{footprints: footprints, logger: logger}
}

// Collection returns the footprint collection the service resolves against.
func (s *Service) Collection() domain.FootprintCollection { return s.footprints }

// Resolve finds the building containing the click, or the closest one within
// maxDistanceMeters of its boundary.
//
// The scan is in collection order. The first containing polygon wins with
// distance 0, regardless of any other nearby building. For non-containing
// polygons the planar boundary distance in degrees is scaled by the fixed
// 111000 factor; the running minimum uses strict less-than, so distance ties
// keep the earlier building. Buildings without a usable polygon are skipped,
// never fatal.
//
// Returns domain.ErrBuildingNotFound when nothing satisfies the policy, and
// domain.ErrInvalidCoordinates for out-of-range input.
func (s *Service) Resolve(click domain.ClickPoint, maxDistanceMeters float64) (domain.Resolution, error) {
	if !geo.ValidateCoordinates(click.Lat, click.Lon) {
		return domain.Resolution{}, domain.ErrInvalidCoordinates
	}

	point := orb.Point{click.Lon, click.Lat}

	closest := -1
	minDistance := math.Inf(1)

	for _, b := range s.footprints.All() {
		if !b.HasPolygon() {
			continue
		}

		if planar.PolygonContains(b.Polygon, point) {
			s.logger.Debug("Click contained by building", zap.Int("index", b.Index))
			return domain.Resolution{Index: b.Index, DistanceMeters: 0, Building: b}, nil
		}

		distanceMeters := planar.DistanceFrom(b.Polygon, point) * geo.DegreesToMeters
		if distanceMeters < minDistance && distanceMeters <= maxDistanceMeters {
			minDistance = distanceMeters
			closest = b.Index
		}
	}

	if closest >= 0 {
		b, _ := s.footprints.At(closest)
		s.logger.Debug("Click resolved to nearby building",
			zap.Int("index", closest),
			zap.Float64("distance_m", minDistance),
		)
		return domain.Resolution{Index: closest, DistanceMeters: minDistance, Building: b}, nil
	}

	return domain.Resolution{}, domain.ErrBuildingNotFound
}
