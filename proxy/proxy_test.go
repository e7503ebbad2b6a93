package proxy

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	mhttp "github.com/platform-smith-labs/siteedge/middleware/http"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestProxy_Forwarding verifies paths are normalized and headers forwarded
func TestProxy_Forwarding(t *testing.T) {
	type seen struct {
		path, query, requestID, forwardedFor string
	}
	got := make(chan seen, 1)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- seen{r.URL.Path, r.URL.RawQuery, r.Header.Get(mhttp.RequestIDHeader), r.Header.Get("X-Forwarded-For")}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	p, err := New(backend.URL, testLogger(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		target   string
		wantPath string
	}{
		{"/api/projects?category=cold", "/api/v1/projects"},
		{"/api/v1/projects", "/api/v1/projects"},
		{"/api", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			req = req.WithContext(context.WithValue(req.Context(), mhttp.RequestIDContextKey, "rid-7"))
			rec := httptest.NewRecorder()

			p.ServeHTTP(rec, req)

			s := <-got
			if s.path != tt.wantPath {
				t.Errorf("Expected upstream path %s, got %s", tt.wantPath, s.path)
			}
			if s.requestID != "rid-7" {
				t.Errorf("Expected forwarded request id rid-7, got %q", s.requestID)
			}
			if s.forwardedFor == "" {
				t.Error("Expected X-Forwarded-For to be set")
			}
			if rec.Code != http.StatusTeapot {
				t.Errorf("Expected upstream status to pass through, got %d", rec.Code)
			}
		})
	}

	req := httptest.NewRequest("GET", "/api/projects?category=cold", nil)
	p.ServeHTTP(httptest.NewRecorder(), req)
	if s := <-got; s.query != "category=cold" {
		t.Errorf("Expected query category=cold, got %s", s.query)
	}
}

// TestProxy_UpstreamDown verifies transport failures become 503 SERVICE_UNAVAILABLE
func TestProxy_UpstreamDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	p, err := New(target, testLogger(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest("GET", "/api/projects", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("Expected SERVICE_UNAVAILABLE, got %s", body.Error.Code)
	}
}

// TestNew_InvalidTarget verifies bad targets are rejected
func TestNew_InvalidTarget(t *testing.T) {
	for _, target := range []string{"backend:8000", "ftp://backend", "://"} {
		if _, err := New(target, testLogger(), Options{}); err == nil {
			t.Errorf("Expected error for %q", target)
		}
	}
}
