package domain

// VisualDescription summarizes a building's appearance from street imagery.
type VisualDescription struct {
	EstimatedFloors string `json:"estimated_floors"`
	Style           string `json:"style"`
	Color           string `json:"color"`
}

// Establishment is a single business identified from a signboard.
type Establishment struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Insights is the structured result of a vision model analysis of a building.
type Insights struct {
	BuildingUsageSummary string            `json:"building_usage_summary"`
	VisualDescription    VisualDescription `json:"visual_description"`
	Establishments       []Establishment   `json:"establishments"`
}

// Photo is a fetched street-level image with the heading it was taken at.
type Photo struct {
	HeadingDegrees float64
	Bytes          []byte
}
