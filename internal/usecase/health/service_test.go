package health

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error {
	return m.err
}

func loadedCollection() domain.FootprintCollection {
	poly := orb.Polygon{{{78.44, 17.40}, {78.45, 17.40}, {78.45, 17.41}, {78.44, 17.41}, {78.44, 17.40}}}
	return domain.NewFootprintCollection([]domain.Building{{Index: 0, Polygon: poly}}, 0)
}

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(loadedCollection(), &mockPinger{})

	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Fatalf("want %s, got %s", Healthy, report.Status)
	}
	if report.Buildings != 1 {
		t.Fatalf("want 1 building, got %d", report.Buildings)
	}
	if report.Checks["dataset"] != CheckOK || report.Checks["cache"] != CheckOK {
		t.Fatalf("unexpected checks %v", report.Checks)
	}
}

func TestCheck_NoCacheConfigured(t *testing.T) {
	svc := New(loadedCollection(), nil)

	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Fatalf("want %s, got %s", Healthy, report.Status)
	}
	if _, ok := report.Checks["cache"]; ok {
		t.Fatal("cache check must be omitted when no store is configured")
	}
}

func TestCheck_CacheDown(t *testing.T) {
	svc := New(loadedCollection(), &mockPinger{err: errors.New("connection refused")})

	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Fatalf("want %s, got %s", Degraded, report.Status)
	}
	if report.Checks["cache"] != CheckError {
		t.Fatalf("unexpected checks %v", report.Checks)
	}
}

func TestCheck_EmptyDataset(t *testing.T) {
	svc := New(domain.NewFootprintCollection(nil, 0), nil)

	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Fatalf("want %s, got %s", Degraded, report.Status)
	}
	if report.Checks["dataset"] != CheckError {
		t.Fatalf("unexpected checks %v", report.Checks)
	}
}
