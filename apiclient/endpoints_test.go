package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/platform-smith-labs/siteedge/core"
)

// newBackend builds a fake backend with the routes the client calls.
func newBackend(t *testing.T, hits *atomic.Int64) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/projects", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			core.List(w, []Project{{ID: 1, Slug: "depot", Category: "fire"}, {ID: 2, Slug: "cold-store", Category: "cold"}})
		})
		r.Get("/projects/{slug}", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if chi.URLParam(r, "slug") != "depot" {
				core.Error(w, r, http.StatusNotFound, "Not Found")
				return
			}
			core.Success(w, Project{ID: 1, Slug: "depot", Title: "Depot", Category: "fire"})
		})
		r.Get("/projects/category/{category}", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			core.List(w, []Project{{ID: 2, Slug: "cold-store", Category: chi.URLParam(r, "category")}})
		})
		r.Post("/consultations", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			var req ConsultationRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				core.Error(w, r, http.StatusBadRequest, "bad body")
				return
			}
			core.Created(w, Consultation{ID: "c-1", Status: "received", Topic: req.Topic})
		})
		r.Get("/config/{key}", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			core.Success(w, ConfigEntry{Key: chi.URLParam(r, "key"), Value: json.RawMessage(`"+90 212 000 00 00"`)})
		})
		r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			core.List(w, []ConfigEntry{{Key: r.URL.Query().Get("keys"), Value: json.RawMessage(`true`)}})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			core.Success(w, HealthStatus{Status: "ok", Version: "1.4.0"})
		})
	})
	return r
}

func validConsultation() ConsultationRequest {
	return ConsultationRequest{
		Name:    "Ayşe Yılmaz",
		Email:   "ayse@example.com.tr",
		Phone:   "+905321234567",
		Topic:   TopicColdChain,
		Message: "We need cold chain monitoring for 12 trucks.",
		Locale:  "tr",
		Consent: true,
	}
}

// TestClient_Projects verifies the project operations
func TestClient_Projects(t *testing.T) {
	var hits atomic.Int64
	c, _ := newTestClient(t, newBackend(t, &hits), Config{})
	ctx := context.Background()

	projects, err := c.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Errorf("Expected 2 projects, got %d", len(projects))
	}

	project, err := c.GetProject(ctx, "depot")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if project.Title != "Depot" {
		t.Errorf("Expected title Depot, got %s", project.Title)
	}

	_, err = c.GetProject(ctx, "unknown")
	if !core.IsCode(err, core.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}

	byCategory, err := c.ListProjectsByCategory(ctx, "cold")
	if err != nil {
		t.Fatalf("ListProjectsByCategory: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Category != "cold" {
		t.Errorf("Unexpected category result: %+v", byCategory)
	}

	before := hits.Load()
	if _, err := c.GetProject(ctx, " "); !core.IsCode(err, core.CodeValidation) {
		t.Errorf("Expected VALIDATION_ERROR for blank slug, got %v", err)
	}
	if _, err := c.ListProjectsByCategory(ctx, ""); !core.IsCode(err, core.CodeValidation) {
		t.Errorf("Expected VALIDATION_ERROR for blank category, got %v", err)
	}
	if hits.Load() != before {
		t.Error("Expected blank arguments not to reach the backend")
	}
}

// TestClient_SubmitConsultation verifies validation happens before sending
func TestClient_SubmitConsultation(t *testing.T) {
	var hits atomic.Int64
	c, _ := newTestClient(t, newBackend(t, &hits), Config{})
	ctx := context.Background()

	created, err := c.SubmitConsultation(ctx, validConsultation())
	if err != nil {
		t.Fatalf("SubmitConsultation: %v", err)
	}
	if created.ID != "c-1" || created.Topic != TopicColdChain {
		t.Errorf("Unexpected record: %+v", created)
	}

	tests := []struct {
		name   string
		mutate func(*ConsultationRequest)
		field  string
	}{
		{"missing name", func(r *ConsultationRequest) { r.Name = "" }, "name"},
		{"bad email", func(r *ConsultationRequest) { r.Email = "not-an-email" }, "email"},
		{"bad phone", func(r *ConsultationRequest) { r.Phone = "0532 123" }, "phone"},
		{"unknown topic", func(r *ConsultationRequest) { r.Topic = "drones" }, "topic"},
		{"unsupported locale", func(r *ConsultationRequest) { r.Locale = "de" }, "locale"},
		{"no consent", func(r *ConsultationRequest) { r.Consent = false }, "consent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := hits.Load()
			req := validConsultation()
			tt.mutate(&req)

			_, err := c.SubmitConsultation(ctx, req)
			apiErr, ok := core.AsAPIError(err)
			if !ok || apiErr.Code != core.CodeValidation {
				t.Fatalf("Expected VALIDATION_ERROR, got %v", err)
			}
			if _, ok := apiErr.Fields[tt.field]; !ok {
				t.Errorf("Expected field error for %s, got %v", tt.field, apiErr.Fields)
			}
			if hits.Load() != before {
				t.Error("Expected invalid request not to reach the backend")
			}
		})
	}
}

// TestClient_Config verifies single and batched config lookups
func TestClient_Config(t *testing.T) {
	var hits atomic.Int64
	c, _ := newTestClient(t, newBackend(t, &hits), Config{})
	ctx := context.Background()

	entry, err := c.GetConfig(ctx, "contact.phone")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if entry.Key != "contact.phone" || string(entry.Value) != `"+90 212 000 00 00"` {
		t.Errorf("Unexpected entry: %s=%s", entry.Key, entry.Value)
	}

	entries, err := c.GetConfigs(ctx, "a", "b")
	if err != nil {
		t.Fatalf("GetConfigs: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "a,b" {
		t.Errorf("Expected keys joined in query, got %+v", entries)
	}

	before := hits.Load()
	if entries, err := c.GetConfigs(ctx); err != nil || entries != nil {
		t.Errorf("Expected no-op for empty keys, got %v, %v", entries, err)
	}
	if hits.Load() != before {
		t.Error("Expected empty key list not to reach the backend")
	}
}

// TestClient_Health verifies the health report
func TestClient_Health(t *testing.T) {
	var hits atomic.Int64
	c, _ := newTestClient(t, newBackend(t, &hits), Config{})

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !status.Healthy() || status.Version != "1.4.0" {
		t.Errorf("Unexpected health: %+v", status)
	}
}
