package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/locale"
	mhttp "github.com/platform-smith-labs/siteedge/middleware/http"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type emptyCtx = HandlerContext[struct{}, struct{}]

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.APIError {
	t.Helper()
	var body struct {
		Error core.APIError `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body.Error
}

// TestAdaptHandler_Context verifies dependencies and request data are injected
func TestAdaptHandler_Context(t *testing.T) {
	api, err := apiclient.New(apiclient.Config{BaseURL: "http://backend:8000"})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}

	var captured emptyCtx
	h := func(ctx emptyCtx, w http.ResponseWriter, r *http.Request) (struct{}, error) {
		captured = ctx
		return struct{}{}, nil
	}

	req := httptest.NewRequest("GET", "/en/content/site", nil)
	reqCtx := locale.WithLocale(req.Context(), locale.English)
	reqCtx = context.WithValue(reqCtx, mhttp.RequestIDContextKey, "rid-1")
	req = req.WithContext(reqCtx)

	AdaptHandler(api, testLogger(), h)(httptest.NewRecorder(), req)

	if captured.Context != req.Context() {
		t.Error("Expected request context to be propagated")
	}
	if captured.API != api {
		t.Error("Expected API client to be injected")
	}
	if captured.Locale != locale.English {
		t.Errorf("Expected locale en, got %s", captured.Locale)
	}
	if id, ok := captured.RequestID.TryValue(); !ok || id != "rid-1" {
		t.Errorf("Expected request id rid-1, got %q", id)
	}
	if captured.Params.HasValue() || captured.Body.HasValue() {
		t.Error("Expected params and body to be unset without middleware")
	}
}

// TestAdaptHandler_DefaultLocale verifies the fallback when no locale middleware ran
func TestAdaptHandler_DefaultLocale(t *testing.T) {
	var captured emptyCtx
	h := func(ctx emptyCtx, w http.ResponseWriter, r *http.Request) (struct{}, error) {
		captured = ctx
		return struct{}{}, nil
	}

	AdaptHandler(nil, testLogger(), h)(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	if captured.Locale != locale.Default {
		t.Errorf("Expected default locale, got %s", captured.Locale)
	}
	if captured.RequestID.HasValue() {
		t.Error("Expected no request id")
	}
}

// TestAdaptHandler_Errors verifies error envelopes for each error class
func TestAdaptHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   core.ErrorCode
	}{
		{"backend not found", core.NewAPIError(http.StatusNotFound, "API Error: Not Found"), 404, core.CodeNotFound},
		{"backend rate limited", core.NewAPIError(http.StatusTooManyRequests, "API Error: Too Many Requests"), 429, core.CodeRateLimited},
		{"wrapped API error", fmt.Errorf("load project: %w", core.NewAPIError(http.StatusServiceUnavailable, "down")), 503, core.CodeServiceUnavailable},
		{"backend timeout", core.WrapAPIError(http.StatusRequestTimeout, core.CodeTimeout, "API Error: Request Timeout", context.DeadlineExceeded), 408, core.CodeTimeout},
		{"transport failure", core.WrapAPIError(0, core.CodeInternal, "API Error: request failed", errors.New("dial tcp")), 500, core.CodeInternal},
		{"handler deadline", context.DeadlineExceeded, 504, core.CodeTimeout},
		{"plain error", errors.New("boom"), 500, core.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := func(ctx emptyCtx, w http.ResponseWriter, r *http.Request) (struct{}, error) {
				return struct{}{}, tt.err
			}

			rec := httptest.NewRecorder()
			AdaptHandler(nil, testLogger(), h)(rec, httptest.NewRequest("GET", "/tr/content/projects/x", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := decodeError(t, rec); got.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, got.Code)
			}
		})
	}
}

// TestAdaptHandler_ClientCancel verifies nothing is written once the client is gone
func TestAdaptHandler_ClientCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := func(hc emptyCtx, w http.ResponseWriter, r *http.Request) (struct{}, error) {
		return struct{}{}, fmt.Errorf("fetch: %w", hc.Context.Err())
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tr", nil).WithContext(ctx)
	AdaptHandler(nil, testLogger(), h)(rec, req)

	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %s", rec.Body.String())
	}
}

// TestAdaptHandler_CanceledWithLiveRequest verifies a stray Canceled is still reported
func TestAdaptHandler_CanceledWithLiveRequest(t *testing.T) {
	h := func(ctx emptyCtx, w http.ResponseWriter, r *http.Request) (struct{}, error) {
		return struct{}{}, context.Canceled
	}

	rec := httptest.NewRecorder()
	AdaptHandler(nil, testLogger(), h)(rec, httptest.NewRequest("GET", "/tr", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
}

// BenchmarkAdaptHandler benchmarks context construction
func BenchmarkAdaptHandler(b *testing.B) {
	h := AdaptHandler(nil, testLogger(), func(ctx emptyCtx, w http.ResponseWriter, r *http.Request) (struct{}, error) {
		return struct{}{}, nil
	})
	req := httptest.NewRequest("GET", "/tr", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h(httptest.NewRecorder(), req)
	}
}
