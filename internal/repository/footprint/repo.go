// Package footprint loads the building footprint dataset from GeoJSON.
package footprint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

// Repository parses footprint GeoJSON files into immutable collections.
// Loading is expected to happen once at startup; the result is shared read-only.
type Repository struct {
	logger *zap.Logger
}

// New creates a footprint repository.
func New(logger *zap.Logger) *Repository {
	return &Repository{logger: logger}
}

// Load reads a GeoJSON FeatureCollection from path. A file that cannot be
// read, or whose collection envelope does not parse, wraps domain.ErrDataLoad.
// Individual malformed features are skipped and logged, never fatal.
func (r *Repository) Load(path string) (domain.FootprintCollection, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domain.FootprintCollection{}, fmt.Errorf("%w: read %s: %w", domain.ErrDataLoad, path, err)
	}
	return r.Parse(data)
}

// Parse decodes raw GeoJSON bytes into a footprint collection.
func (r *Repository) Parse(data []byte) (domain.FootprintCollection, error) {
	// Decode the envelope with raw features so one bad feature cannot
	// abort the whole load.
	var envelope struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return domain.FootprintCollection{}, fmt.Errorf("%w: parse feature collection: %w", domain.ErrDataLoad, err)
	}
	if envelope.Type != "FeatureCollection" {
		return domain.FootprintCollection{}, fmt.Errorf("%w: unexpected GeoJSON type %q", domain.ErrDataLoad, envelope.Type)
	}

	buildings := make([]domain.Building, 0, len(envelope.Features))
	skipped := 0

	for i, raw := range envelope.Features {
		feature, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			skipped++
			r.logger.Warn("Skipping malformed feature",
				zap.Int("feature", i),
				zap.Error(err),
			)
			continue
		}

		polygon, ok := polygonOf(feature.Geometry)
		if !ok {
			skipped++
			r.logger.Warn("Skipping feature without polygon geometry",
				zap.Int("feature", i),
				zap.String("geometry_type", geometryType(feature.Geometry)),
			)
			continue
		}

		buildings = append(buildings, domain.Building{
			Index:      len(buildings),
			Polygon:    polygon,
			Attributes: attributesOf(feature.Properties),
		})
	}

	r.logger.Info("Loaded footprint collection",
		zap.Int("buildings", len(buildings)),
		zap.Int("skipped", skipped),
	)

	return domain.NewFootprintCollection(buildings, skipped), nil
}

// polygonOf extracts the footprint polygon. The dataset carries plain
// polygons with a single outer ring; for a MultiPolygon the first member
// is taken.
func polygonOf(g orb.Geometry) (orb.Polygon, bool) {
	switch geom := g.(type) {
	case orb.Polygon:
		return geom, true
	case orb.MultiPolygon:
		if len(geom) > 0 {
			return geom[0], true
		}
		return nil, false
	default:
		return nil, false
	}
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "none"
	}
	return g.GeoJSONType()
}

// attributesOf flattens GeoJSON properties into the string mapping the
// dataset uses (all source values are numeric strings or plain strings).
func attributesOf(props geojson.Properties) map[string]string {
	attrs := make(map[string]string, len(props))
	for key, value := range props {
		switch v := value.(type) {
		case string:
			attrs[key] = v
		case float64:
			attrs[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			attrs[key] = strconv.FormatBool(v)
		case nil:
			// drop null properties
		default:
			attrs[key] = fmt.Sprintf("%v", v)
		}
	}
	return attrs
}
