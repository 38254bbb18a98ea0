package streetview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Size:       "640x640",
		FOV:        90,
		TimeoutSec: 5,
		Logger:     zap.NewNop(),
	})
}

func TestFetch_Success(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	})

	body, err := client.Fetch(context.Background(), 17.407, 78.4456, 90)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "jpeg-bytes" {
		t.Fatalf("unexpected body %q", body)
	}

	for key, want := range map[string]string{
		"size":    "640x640",
		"heading": "90",
		"fov":     "90",
		"pitch":   "0",
		"source":  "outdoor",
		"key":     "test-key",
	} {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("param %s: want %q, got %v", key, want, got)
		}
	}
}

func TestFetch_Unavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Fetch(context.Background(), 17.407, 78.4456, 0)
	if !errors.Is(err, domain.ErrImageryUnavailable) {
		t.Fatalf("want ErrImageryUnavailable, got %v", err)
	}
}

func TestMetadata_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metadata" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","pano_id":"abc","location":{"lat":17.4071,"lng":78.4455}}`))
	})

	meta, err := client.Metadata(context.Background(), 17.407, 78.4456)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if !meta.OK() {
		t.Fatal("want OK metadata")
	}
	if meta.PanoID != "abc" || meta.Location.Lat != 17.4071 {
		t.Fatalf("unexpected metadata %+v", meta)
	}
}

func TestMetadata_ZeroResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS"}`))
	})

	meta, err := client.Metadata(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.OK() {
		t.Fatal("ZERO_RESULTS must not report OK")
	}
}
