package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	healthuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/health"
	insightuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/insight"
	resolveuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/resolve"
)

// --- Mocks ---

type mockInsightUseCase struct {
	lastIndex int
	lastOpts  insightuc.Options
	result    insightuc.Result
	err       error
}

func (m *mockInsightUseCase) Generate(
	_ context.Context, index int, opts insightuc.Options,
) (insightuc.Result, error) {
	m.lastIndex = index
	m.lastOpts = opts
	return m.result, m.err
}

func testCollection() domain.FootprintCollection {
	poly := orb.Polygon{{
		{78.4455, 17.4069},
		{78.4457, 17.4069},
		{78.4457, 17.4071},
		{78.4455, 17.4071},
		{78.4455, 17.4069},
	}}
	return domain.NewFootprintCollection([]domain.Building{{
		Index:      0,
		Polygon:    poly,
		Attributes: map[string]string{domain.AttrArea: "16.5673"},
	}}, 0)
}

func testClient(insightSvc insightUseCase) *Client {
	collection := testCollection()
	return &Client{
		resolveSvc:  resolveuc.New(collection, zap.NewNop()),
		insightSvc:  insightSvc,
		healthSvc:   healthuc.New(collection, nil),
		maxDistance: 50,
	}
}

// --- Tests ---

func TestNew_RequiresFootprints(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("want error without a footprint dataset")
	}
}

func TestNew_FromData(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"area_in_me": 16.5673},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[78.4455,17.4069],[78.4457,17.4069],[78.4457,17.4071],[78.4455,17.4071],[78.4455,17.4069]]]
			}
		}]
	}`)

	client, err := New(context.Background(), WithFootprintsData(data))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	if client.Count() != 1 {
		t.Fatalf("want 1 building, got %d", client.Count())
	}
}

func TestResolve_Contained(t *testing.T) {
	client := testClient(&mockInsightUseCase{})

	res, err := client.Resolve(17.4070, 78.4456)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Index != 0 || !res.Contained || res.DistanceMeters != 0 {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.Building.Attributes[domain.AttrArea] != "16.5673" {
		t.Fatalf("building attributes missing: %+v", res.Building)
	}
}

func TestResolve_NotFound(t *testing.T) {
	client := testClient(&mockInsightUseCase{})

	_, err := client.Resolve(17.5, 78.5)
	if !errors.Is(err, ErrBuildingNotFound) {
		t.Fatalf("want ErrBuildingNotFound, got %v", err)
	}
}

func TestResolveWithin_InvalidCoordinates(t *testing.T) {
	client := testClient(&mockInsightUseCase{})

	_, err := client.ResolveWithin(95, 78.5, 50)
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("want ErrInvalidCoordinates, got %v", err)
	}
}

func TestBuilding(t *testing.T) {
	client := testClient(&mockInsightUseCase{})

	b, err := client.Building(0)
	if err != nil {
		t.Fatalf("Building: %v", err)
	}
	if b.Index != 0 || b.Bounds == nil {
		t.Fatalf("unexpected building %+v", b)
	}

	if _, err := client.Building(42); !errors.Is(err, ErrBuildingNotFound) {
		t.Fatalf("want ErrBuildingNotFound, got %v", err)
	}
}

func TestInsights_DefaultsToImagery(t *testing.T) {
	mock := &mockInsightUseCase{result: insightuc.Result{
		Insights: domain.Insights{BuildingUsageSummary: "Shops."},
		Attempts: 1,
	}}
	client := testClient(mock)

	result, err := client.Insights(context.Background(), 0)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if !mock.lastOpts.IncludeImagery {
		t.Fatal("imagery must be enabled by default")
	}
	if result.Insights.BuildingUsageSummary != "Shops." {
		t.Fatalf("unexpected insights %+v", result.Insights)
	}
}

func TestInsights_TextOnly(t *testing.T) {
	mock := &mockInsightUseCase{}
	client := testClient(mock)

	if _, err := client.Insights(context.Background(), 0, TextOnly()); err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if mock.lastOpts.IncludeImagery {
		t.Fatal("TextOnly must disable imagery")
	}
}

func TestInsights_WithHeadings(t *testing.T) {
	mock := &mockInsightUseCase{}
	client := testClient(mock)

	if _, err := client.Insights(context.Background(), 0, WithHeadings(0, 90)); err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(mock.lastOpts.Headings) != 2 || mock.lastOpts.Headings[1] != 90 {
		t.Fatalf("unexpected headings %v", mock.lastOpts.Headings)
	}
}

func TestInsights_ProviderError(t *testing.T) {
	mock := &mockInsightUseCase{err: domain.ErrInsightProviderError}
	client := testClient(mock)

	_, err := client.Insights(context.Background(), 0)
	if !errors.Is(err, ErrInsightProviderError) {
		t.Fatalf("want provider error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	client := testClient(&mockInsightUseCase{})

	status := client.Health(context.Background())
	if status.Status != "ok" || status.Buildings != 1 {
		t.Fatalf("unexpected health %+v", status)
	}
	if status.Checks["dataset"] != "ok" {
		t.Fatalf("unexpected checks %v", status.Checks)
	}
}
