package core

import (
	"log/slog"
	"net/http"
)

// HandlerFunc represents a handler that can return an error for cleaner composition
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP converts our custom HandlerFunc to standard http.Handler
func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		handleError(w, r, err)
	}
}

// handleError handles errors in a centralized way
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := AsAPIError(err); ok {
		WriteAPIError(w, r, *apiErr)
		return
	}

	slog.Error("Unexpected error in handler",
		"original_error", err.Error(),
		"method", r.Method,
		"path", r.URL.Path,
	)

	WriteAPIError(w, r, *ErrInternal.Wrap(err))
}
