package insights

import (
	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	insightuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/insight"
)

// Building is a single footprint from the loaded dataset.
type Building struct {
	Index      int
	CenterLat  float64
	CenterLon  float64
	Bounds     *Bounds
	Attributes map[string]string
}

// Bounds is an axis-aligned bounding box in degrees.
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Resolution is the outcome of mapping a coordinate to a building.
type Resolution struct {
	Index          int
	DistanceMeters float64
	Contained      bool
	Building       Building
}

// VisualDescription is the model's read of the building exterior.
type VisualDescription struct {
	EstimatedFloors string
	Style           string
	Color           string
}

// Establishment is a business identified at the building.
type Establishment struct {
	Name        string
	Type        string
	Description string
}

// Insights is the structured analysis produced by the vision model.
type Insights struct {
	BuildingUsageSummary string
	VisualDescription    VisualDescription
	Establishments       []Establishment
}

// Photo is a street-level photo captured for an analysis.
type Photo struct {
	HeadingDegrees float64
	Bytes          []byte
}

// InsightResult is a generated insight set plus the imagery that informed it.
type InsightResult struct {
	Insights               Insights
	Photos                 []Photo
	PanoramaDistanceMeters float64
	Attempts               int
}

func buildingFromDomain(b domain.Building) Building {
	lat, lon := b.Center()
	out := Building{
		Index:      b.Index,
		CenterLat:  lat,
		CenterLon:  lon,
		Attributes: b.Attributes,
	}
	if db := b.Bounds(); db != nil {
		out.Bounds = &Bounds{
			MinLon: db.MinLon,
			MinLat: db.MinLat,
			MaxLon: db.MaxLon,
			MaxLat: db.MaxLat,
		}
	}
	return out
}

func resolutionFromDomain(r domain.Resolution) Resolution {
	return Resolution{
		Index:          r.Index,
		DistanceMeters: r.DistanceMeters,
		Contained:      r.Contained(),
		Building:       buildingFromDomain(r.Building),
	}
}

func insightsFromDomain(in domain.Insights) Insights {
	establishments := make([]Establishment, len(in.Establishments))
	for i, e := range in.Establishments {
		establishments[i] = Establishment{Name: e.Name, Type: e.Type, Description: e.Description}
	}
	return Insights{
		BuildingUsageSummary: in.BuildingUsageSummary,
		VisualDescription: VisualDescription{
			EstimatedFloors: in.VisualDescription.EstimatedFloors,
			Style:           in.VisualDescription.Style,
			Color:           in.VisualDescription.Color,
		},
		Establishments: establishments,
	}
}

func insightResultFromDomain(r insightuc.Result) InsightResult {
	photos := make([]Photo, len(r.Photos))
	for i, p := range r.Photos {
		photos[i] = Photo{HeadingDegrees: p.HeadingDegrees, Bytes: p.Bytes}
	}
	return InsightResult{
		Insights:               insightsFromDomain(r.Insights),
		Photos:                 photos,
		PanoramaDistanceMeters: r.PanoramaDistanceMeters,
		Attempts:               r.Attempts,
	}
}
