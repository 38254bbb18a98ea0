package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authRequest(t *testing.T, mw func(http.Handler) http.Handler, path, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestBearerAuth_DisabledWhenNoKeys(t *testing.T) {
	mw := BearerAuthMiddleware(nil)

	if rec := authRequest(t, mw, "/v1/buildings", ""); rec.Code != http.StatusOK {
		t.Fatalf("want pass-through, got %d", rec.Code)
	}
}

func TestBearerAuth_ExemptPaths(t *testing.T) {
	mw := BearerAuthMiddleware([]string{"secret"})

	for _, path := range []string{"/health", "/metrics"} {
		if rec := authRequest(t, mw, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s must be exempt, got %d", path, rec.Code)
		}
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	mw := BearerAuthMiddleware([]string{"secret"})

	if rec := authRequest(t, mw, "/v1/buildings", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	mw := BearerAuthMiddleware([]string{"secret"})

	if rec := authRequest(t, mw, "/v1/buildings", "Basic secret"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestBearerAuth_InvalidKey(t *testing.T) {
	mw := BearerAuthMiddleware([]string{"secret"})

	if rec := authRequest(t, mw, "/v1/buildings", "Bearer wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestBearerAuth_ValidKey(t *testing.T) {
	mw := BearerAuthMiddleware([]string{"secret", "other"})

	if rec := authRequest(t, mw, "/v1/buildings", "Bearer other"); rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}
