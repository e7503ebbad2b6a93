package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Simple response helper functions

// JSON sends a JSON response with the given status and data
func JSON[T any](w http.ResponseWriter, status int, data T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Success sends a 200 OK JSON response
func Success[T any](w http.ResponseWriter, data T) error {
	return JSON(w, http.StatusOK, data)
}

// Created sends a 201 Created JSON response
func Created[T any](w http.ResponseWriter, data T) error {
	return JSON(w, http.StatusCreated, data)
}

// List sends a JSON response with data wrapped in a list structure
func List[T any](w http.ResponseWriter, data []T) error {
	response := map[string]any{
		"data":  data,
		"count": len(data),
	}
	return JSON(w, http.StatusOK, response)
}

// Health sends a health check response. A degraded status is reported with
// 503 so load balancers can act on it.
func Health(w http.ResponseWriter, status string, checks map[string]bool) error {
	response := map[string]any{
		"status": status,
		"checks": checks,
	}
	code := http.StatusOK
	if status != HealthStatusOK {
		code = http.StatusServiceUnavailable
	}
	return JSON(w, code, response)
}

// Health status values reported by Health.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
)

// Error sends an error response with logging
func Error(w http.ResponseWriter, r *http.Request, status int, message string) error {
	apiErr := NewAPIError(status, message)
	return WriteAPIError(w, r, *apiErr)
}

// WriteAPIError sends an error response for APIError types with comprehensive logging
func WriteAPIError(w http.ResponseWriter, r *http.Request, apiErr APIError) error {
	// Build log fields
	logFields := []any{
		"status", apiErr.StatusCode,
		"code", apiErr.Code,
		"message", apiErr.Message,
	}

	if apiErr.Detail != "" {
		logFields = append(logFields, "detail", apiErr.Detail)
	}

	if cause := apiErr.Unwrap(); cause != nil {
		logFields = append(logFields, "cause", cause.Error())
	}

	if len(apiErr.Fields) > 0 {
		logFields = append(logFields, "validation_field_count", len(apiErr.Fields))
		logFields = append(logFields, "validation_fields", apiErr.Fields)
	}

	// Add request context
	logFields = append(logFields, extractRequestContext(r)...)

	// Log based on status code
	if apiErr.StatusCode >= 500 {
		slog.Error("API error response", logFields...)
	} else if apiErr.StatusCode >= 400 {
		slog.Warn("API error response", logFields...)
	} else {
		slog.Info("API error response", logFields...)
	}

	// Unified response structure
	response := map[string]any{
		"error": apiErr,
	}
	status := apiErr.StatusCode
	if status < 400 || status > 599 {
		// Transport failures carry no upstream status
		status = http.StatusInternalServerError
	}
	return JSON(w, status, response)
}

// extractRequestContext extracts useful request context for logging
func extractRequestContext(r *http.Request) []any {
	logFields := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.Header.Get("User-Agent"),
	}

	if r.URL.RawQuery != "" {
		logFields = append(logFields, "query", r.URL.RawQuery)
	}

	if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
		logFields = append(logFields, "request_id", requestID)
	}

	return logFields
}
