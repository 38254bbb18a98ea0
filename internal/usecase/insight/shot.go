package insight

import (
	"context"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	"github.com/sathizz7/Street-View-Analysis/internal/domain/geo"
)

// Shot is a camera position and heading for a single street-level photo.
type Shot struct {
	Lat            float64
	Lon            float64
	HeadingDegrees float64
	// PanoramaDistanceMeters is the haversine distance from the panorama
	// camera to the building center; zero when the shot falls back to the
	// building center.
	PanoramaDistanceMeters float64
}

// AimFromPanorama derives the shot for a single photo of the building: the
// camera sits at the nearest panorama, aiming at the building center via the
// bearing between the two. Without a panorama, or when the lookup fails, it
// falls back to a north-facing shot from the center itself. The returned
// error reports the lookup failure; the shot is usable either way.
func AimFromPanorama(ctx context.Context, imagery ImagerySource, building domain.Building) (Shot, error) {
	centerLat, centerLon := building.Center()
	fallback := Shot{Lat: centerLat, Lon: centerLon}

	if imagery == nil {
		return fallback, nil
	}

	pano, err := imagery.Panorama(ctx, centerLat, centerLon)
	if err != nil {
		return fallback, err
	}
	if !pano.Found {
		return fallback, nil
	}

	return Shot{
		Lat:                    pano.Lat,
		Lon:                    pano.Lon,
		HeadingDegrees:         geo.Bearing(pano.Lat, pano.Lon, centerLat, centerLon),
		PanoramaDistanceMeters: geo.Haversine(pano.Lat, pano.Lon, centerLat, centerLon),
	}, nil
}
