package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

// --- Mocks ---

type mockAnalyzer struct {
	failures  int
	calls     int
	lastPhoto []byte
	lastAttrs map[string]string
	insights  domain.Insights
	err       error
}

func (m *mockAnalyzer) Analyze(_ context.Context, attrs map[string]string, photo []byte) (domain.Insights, error) {
	m.calls++
	m.lastAttrs = attrs
	m.lastPhoto = photo
	if m.calls <= m.failures {
		if m.err != nil {
			return domain.Insights{}, m.err
		}
		return domain.Insights{}, domain.ErrInsightProviderError
	}
	return m.insights, nil
}

type fetchCall struct {
	lat, lon, heading float64
}

type mockImagery struct {
	pano       Panorama
	panoErr    error
	photos     map[float64][]byte // by heading; missing heading → unavailable
	anyPhoto   []byte             // returned for any heading when set
	fetchCalls []fetchCall
}

func (m *mockImagery) Panorama(_ context.Context, _, _ float64) (Panorama, error) {
	return m.pano, m.panoErr
}

func (m *mockImagery) Fetch(_ context.Context, lat, lon, heading float64) ([]byte, error) {
	m.fetchCalls = append(m.fetchCalls, fetchCall{lat, lon, heading})
	if m.anyPhoto != nil {
		return m.anyPhoto, nil
	}
	if bytes, ok := m.photos[heading]; ok {
		return bytes, nil
	}
	return nil, domain.ErrImageryUnavailable
}

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Multiplier: 2}
}

func testCollection() domain.FootprintCollection {
	poly := orb.Polygon{{{78.4455, 17.4069}, {78.4457, 17.4069}, {78.4457, 17.4071}, {78.4455, 17.4071}, {78.4455, 17.4069}}}
	return domain.NewFootprintCollection([]domain.Building{{
		Index:   0,
		Polygon: poly,
		Attributes: map[string]string{
			domain.AttrArea:       "16.5673",
			domain.AttrConfidence: "0.7708",
		},
	}}, 0)
}

func newService(analyzer Analyzer, imagery ImagerySource, retry RetryPolicy) *Service {
	return New(testCollection(), imagery, analyzer, retry, zap.NewNop())
}

// --- Tests ---

func TestGenerate_TextOnly(t *testing.T) {
	analyzer := &mockAnalyzer{insights: domain.Insights{BuildingUsageSummary: "Residential."}}
	svc := newService(analyzer, nil, fastRetry(3))

	res, err := svc.Generate(context.Background(), 0, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Insights.BuildingUsageSummary != "Residential." {
		t.Fatalf("unexpected insights %+v", res.Insights)
	}
	if res.Attempts != 1 {
		t.Fatalf("want 1 attempt, got %d", res.Attempts)
	}
	if analyzer.lastPhoto != nil {
		t.Fatal("no photo expected for text-only analysis")
	}
	if analyzer.lastAttrs[domain.AttrArea] != "16.5673" {
		t.Fatalf("attributes not passed through: %v", analyzer.lastAttrs)
	}
}

func TestGenerate_UnknownBuilding(t *testing.T) {
	svc := newService(&mockAnalyzer{}, nil, fastRetry(3))

	_, err := svc.Generate(context.Background(), 42, Options{})
	if !errors.Is(err, domain.ErrBuildingNotFound) {
		t.Fatalf("want ErrBuildingNotFound, got %v", err)
	}
}

func TestGenerate_RetriesThenSucceeds(t *testing.T) {
	analyzer := &mockAnalyzer{failures: 2, insights: domain.Insights{BuildingUsageSummary: "Shops."}}
	svc := newService(analyzer, nil, fastRetry(3))

	res, err := svc.Generate(context.Background(), 0, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Attempts != 3 {
		t.Fatalf("want 3 attempts, got %d", res.Attempts)
	}
	if analyzer.calls != 3 {
		t.Fatalf("want 3 analyzer calls, got %d", analyzer.calls)
	}
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	analyzer := &mockAnalyzer{failures: 10}
	svc := newService(analyzer, nil, fastRetry(3))

	_, err := svc.Generate(context.Background(), 0, Options{})
	if !errors.Is(err, domain.ErrInsightProviderError) {
		t.Fatalf("want wrapped provider error, got %v", err)
	}
	if analyzer.calls != 3 {
		t.Fatalf("want exactly 3 calls, got %d", analyzer.calls)
	}
}

func TestGenerate_CancelDuringBackoff(t *testing.T) {
	analyzer := &mockAnalyzer{failures: 10}
	svc := newService(analyzer, nil, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour, Multiplier: 2})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Generate(ctx, 0, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestGenerate_FixedHeadings(t *testing.T) {
	imagery := &mockImagery{photos: map[float64][]byte{
		0:  []byte("north"),
		90: []byte("east"),
	}}
	analyzer := &mockAnalyzer{}
	svc := newService(analyzer, imagery, fastRetry(1))

	res, err := svc.Generate(context.Background(), 0, Options{
		IncludeImagery: true,
		Headings:       []float64{0, 90, 180}, // 180 is unavailable
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Photos) != 2 {
		t.Fatalf("want 2 photos, got %d", len(res.Photos))
	}
	if string(analyzer.lastPhoto) != "north" {
		t.Fatalf("analyzer must receive the first photo, got %q", analyzer.lastPhoto)
	}
	if len(imagery.fetchCalls) != 3 {
		t.Fatalf("want 3 fetch calls, got %d", len(imagery.fetchCalls))
	}
}

func TestGenerate_DerivedHeadingFromPanorama(t *testing.T) {
	// Panorama due south of the building center: camera must aim north (~0 deg).
	imagery := &mockImagery{
		pano:     Panorama{Found: true, Lat: 17.4060, Lon: 78.4456},
		anyPhoto: []byte("aimed"),
	}
	analyzer := &mockAnalyzer{}
	svc := newService(analyzer, imagery, fastRetry(1))

	res, err := svc.Generate(context.Background(), 0, Options{IncludeImagery: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Photos) != 1 {
		t.Fatalf("want 1 photo, got %d", len(res.Photos))
	}
	if len(imagery.fetchCalls) != 1 {
		t.Fatalf("want 1 fetch call, got %d", len(imagery.fetchCalls))
	}

	call := imagery.fetchCalls[0]
	if call.lat != 17.4060 || call.lon != 78.4456 {
		t.Fatalf("fetch must use the panorama position, got %+v", call)
	}
	if call.heading > 5 && call.heading < 355 {
		t.Fatalf("heading must aim roughly north, got %f", call.heading)
	}
	if res.PanoramaDistanceMeters <= 0 {
		t.Fatal("want positive panorama distance")
	}
}

func TestGenerate_NoPanoramaFallsBackToNorth(t *testing.T) {
	imagery := &mockImagery{photos: map[float64][]byte{0: []byte("north")}}
	analyzer := &mockAnalyzer{}
	svc := newService(analyzer, imagery, fastRetry(1))

	res, err := svc.Generate(context.Background(), 0, Options{IncludeImagery: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Photos) != 1 || res.Photos[0].HeadingDegrees != 0 {
		t.Fatalf("want single north photo, got %+v", res.Photos)
	}
}

func TestAimFromPanorama_NilImagery(t *testing.T) {
	building, _ := testCollection().At(0)

	shot, err := AimFromPanorama(context.Background(), nil, building)
	if err != nil {
		t.Fatalf("AimFromPanorama: %v", err)
	}
	if shot.HeadingDegrees != 0 || shot.PanoramaDistanceMeters != 0 {
		t.Fatalf("want north-facing center fallback, got %+v", shot)
	}
	wantLat, wantLon := building.Center()
	if shot.Lat != wantLat || shot.Lon != wantLon {
		t.Fatalf("want building center, got %+v", shot)
	}
}

func TestAimFromPanorama_LookupErrorFallsBack(t *testing.T) {
	imagery := &mockImagery{panoErr: errors.New("metadata unreachable")}
	building, _ := testCollection().At(0)

	shot, err := AimFromPanorama(context.Background(), imagery, building)
	if err == nil {
		t.Fatal("want lookup error surfaced")
	}
	wantLat, wantLon := building.Center()
	if shot.Lat != wantLat || shot.Lon != wantLon || shot.HeadingDegrees != 0 {
		t.Fatalf("want center fallback despite error, got %+v", shot)
	}
}
