package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// TestWithRequestID verifies request IDs are generated or propagated
func TestWithRequestID(t *testing.T) {
	t.Run("generates UUID when header missing", func(t *testing.T) {
		var captured string
		handler := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = GetRequestID(r)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/tr", nil))

		if _, err := uuid.Parse(captured); err != nil {
			t.Errorf("Expected valid UUID, got %q: %v", captured, err)
		}
		if got := rec.Header().Get(RequestIDHeader); got != captured {
			t.Errorf("Expected response header %s, got %s", captured, got)
		}
	})

	t.Run("propagates existing header", func(t *testing.T) {
		var captured string
		handler := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest("GET", "/en/contact", nil)
		req.Header.Set(RequestIDHeader, "edge-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if captured != "edge-123" {
			t.Errorf("Expected edge-123, got %s", captured)
		}
		if got := rec.Header().Get(RequestIDHeader); got != "edge-123" {
			t.Errorf("Expected response header edge-123, got %s", got)
		}
	})

	t.Run("unique per request", func(t *testing.T) {
		handler := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		seen := make(map[string]bool)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			id := rec.Header().Get(RequestIDHeader)
			if seen[id] {
				t.Fatalf("Expected unique request IDs, got duplicate %s", id)
			}
			seen[id] = true
		}
	})
}

// TestRequestIDFromContext verifies lookups on bare and populated contexts
func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("Expected empty string, got %s", got)
	}

	ctx := context.WithValue(context.Background(), RequestIDContextKey, "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("Expected abc, got %s", got)
	}

	// A plain string key must not collide with the typed key
	ctx = context.WithValue(context.Background(), "request_id", "wrong") //nolint:staticcheck
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("Expected empty string for untyped key, got %s", got)
	}
}

// BenchmarkWithRequestID benchmarks request ID middleware performance
func BenchmarkWithRequestID(b *testing.B) {
	handler := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = GetRequestID(r)
	}))

	req := httptest.NewRequest("GET", "/tr", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
