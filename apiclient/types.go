package apiclient

import (
	"encoding/json"
	"time"
)

// ListResponse is the backend's collection envelope.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// Project is a published reference project.
type Project struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Locale      string     `json:"locale,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Consultation topics accepted by the backend.
const (
	TopicFireLink  = "firelink"
	TopicColdChain = "coldchain"
	TopicVibration = "vibration"
	TopicGeneral   = "general"
)

// ConsultationRequest is the contact form payload.
type ConsultationRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,e164"`
	Company string `json:"company,omitempty" validate:"omitempty,max=160"`
	Topic   string `json:"topic" validate:"required,oneof=firelink coldchain vibration general"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
	Locale  string `json:"locale" validate:"required,site_locale"`
	Consent bool   `json:"consent" validate:"required"`
}

// Consultation is the record the backend creates for a request.
type Consultation struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConfigEntry is one public configuration value. Value is kept raw so
// callers decide its shape.
type ConfigEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// HealthStatus is the backend health report.
type HealthStatus struct {
	Status    string     `json:"status"`
	Version   string     `json:"version,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Healthy reports whether the backend declared itself usable.
func (h HealthStatus) Healthy() bool {
	return h.Status == "ok" || h.Status == "healthy"
}
