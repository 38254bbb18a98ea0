package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(17.4070, 78.4456, 17.4070, 78.4456)
	if d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_NewYork_London(t *testing.T) {
	d := Haversine(40.7128, -74.0060, 51.5074, -0.1278)
	// Known distance is roughly 5570 km.
	if !almost(d, 5_570_000, 20_000) {
		t.Fatalf("want ~5570km, got %f", d)
	}
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	d := Haversine(0, 0, 1, 0)
	// One degree of latitude is ~111.2 km on a 6371 km sphere.
	if !almost(d, 111_195, 100) {
		t.Fatalf("want ~111195m, got %f", d)
	}
}

func TestBearing_ZeroDisplacement(t *testing.T) {
	b := Bearing(17.4070, 78.4456, 17.4070, 78.4456)
	if math.IsNaN(b) {
		t.Fatal("bearing must be defined for zero displacement")
	}
	if b < 0 || b >= 360 {
		t.Fatalf("bearing %f outside [0,360)", b)
	}
}

func TestBearing_CardinalDirections(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"north", 0, 0, 1, 0, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 1, 0, 0, 0, 180},
		{"west", 0, 1, 0, 0, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if !almost(got, tt.want, 1e-6) {
				t.Fatalf("want %f, got %f", tt.want, got)
			}
		})
	}
}

func TestBearing_AlwaysNormalized(t *testing.T) {
	// A northwest bearing comes out of atan2 negative and must wrap into [0,360).
	b := Bearing(0, 0, 1, -1)
	if b < 0 || b >= 360 {
		t.Fatalf("bearing %f outside [0,360)", b)
	}
	if b < 270 || b > 360 {
		t.Fatalf("want northwest quadrant, got %f", b)
	}
}

func TestValidateCoordinates(t *testing.T) {
	if !ValidateCoordinates(17.4, 78.4) {
		t.Fatal("valid coordinates rejected")
	}
	if ValidateCoordinates(91, 0) || ValidateCoordinates(0, 181) || ValidateCoordinates(-91, 0) {
		t.Fatal("out-of-range coordinates accepted")
	}
}
