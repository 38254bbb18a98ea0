// Package domain holds the core types of the building insights service.
package domain

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Well-known attribute keys carried by the footprint dataset.
const (
	AttrArea       = "area_in_me"
	AttrConfidence = "confidence"
	AttrLatitude   = "latitude"
	AttrLongitude  = "longitude"
	AttrPlusCode   = "full_plus_"
)

// Building is a single footprint: an outer-ring polygon in (lon, lat) degrees
// plus the attribute mapping of the source feature. Identity is the positional
// index within its collection; the dataset guarantees no stable external ID.
type Building struct {
	Index      int
	Polygon    orb.Polygon
	Attributes map[string]string
}

// FootprintCollection is an ordered, immutable sequence of buildings loaded
// once at startup. Iteration order matches the source file.
type FootprintCollection struct {
	buildings []Building
	skipped   int
}

// NewFootprintCollection builds a collection from parsed buildings.
// skipped records how many source features were dropped as malformed.
func NewFootprintCollection(buildings []Building, skipped int) FootprintCollection {
	return FootprintCollection{buildings: buildings, skipped: skipped}
}

// Len returns the number of buildings in the collection.
func (c FootprintCollection) Len() int { return len(c.buildings) }

// Skipped returns the number of malformed source features dropped at load time.
func (c FootprintCollection) Skipped() int { return c.skipped }

// At returns the building at the given positional index.
// ok is false when the index is out of range.
func (c FootprintCollection) At(index int) (Building, bool) {
	if index < 0 || index >= len(c.buildings) {
		return Building{}, false
	}
	return c.buildings[index], true
}

// All returns the buildings in collection order. Callers must not mutate.
func (c FootprintCollection) All() []Building { return c.buildings }

// Attr returns a named attribute, or empty string when absent.
func (b Building) Attr(key string) string { return b.Attributes[key] }

// HasPolygon reports whether the building carries a usable outer ring:
// a closed ring of at least three distinct vertices. Buildings without one
// are skipped by resolution queries instead of failing them.
func (b Building) HasPolygon() bool {
	return len(b.Polygon) > 0 && len(b.Polygon[0]) >= 4
}

// Center returns the polygon centroid as (lat, lon). When the geometry is
// unusable it falls back to the raw latitude/longitude attribute strings,
// defaulting to 0 on parse failure.
func (b Building) Center() (lat, lon float64) {
	if b.HasPolygon() {
		c, area := planar.CentroidArea(b.Polygon)
		if area != 0 && !math.IsNaN(c.Lat()) && !math.IsNaN(c.Lon()) {
			return c.Lat(), c.Lon()
		}
	}
	lat, _ = strconv.ParseFloat(b.Attr(AttrLatitude), 64)
	lon, _ = strconv.ParseFloat(b.Attr(AttrLongitude), 64)
	return lat, lon
}

// BoundingBox is an axis-aligned bounding box in degrees.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Bounds returns the min/max of the polygon vertices, or nil when the
// geometry is unusable.
func (b Building) Bounds() *BoundingBox {
	if !b.HasPolygon() {
		return nil
	}
	bound := b.Polygon.Bound()
	return &BoundingBox{
		MinLon: bound.Min[0],
		MinLat: bound.Min[1],
		MaxLon: bound.Max[0],
		MaxLat: bound.Max[1],
	}
}
