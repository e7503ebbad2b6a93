package swagger

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// InstanceName is the swag registry name of the generated document.
const InstanceName = "siteedge"

// registryDoc adapts a handler registry to swag.Swagger.
type registryDoc struct {
	mu       sync.RWMutex
	registry *handler.Registry
	info     Info
}

func (d *registryDoc) set(registry *handler.Registry, info Info) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registry, d.info = registry, info
}

// ReadDoc implements swag.Swagger.
func (d *registryDoc) ReadDoc() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.registry == nil {
		return "{}"
	}
	doc, err := GenerateJSON(d.registry, d.info)
	if err != nil {
		return "{}"
	}
	return string(doc)
}

var (
	doc      = &registryDoc{}
	register sync.Once
)

// SetupSwaggerUI registers the documentation routes under basePath:
//   - GET {basePath}/swagger.json returns the OpenAPI document
//   - GET {basePath}/swagger/* serves Swagger UI
//
// The document is also published to the swag registry as InstanceName, so
// {basePath}/swagger/doc.json serves the same content.
//
// Example usage:
//
//	swagger.SetupSwaggerUI(r, "/docs", registry, swagger.DefaultInfo(), logger)
func SetupSwaggerUI(r chi.Router, basePath string, registry *handler.Registry, info Info, logger *slog.Logger) {
	basePath = strings.TrimSuffix(basePath, "/")

	doc.set(registry, info)
	register.Do(func() {
		swag.Register(InstanceName, doc)
	})

	r.Get(basePath+"/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		spec, err := GenerateJSON(registry, info)
		if err != nil {
			logger.Error("Failed to generate API specification", "error", err.Error())
			core.Error(w, r, http.StatusInternalServerError, "Failed to generate API specification")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(spec)
	})

	r.Get(basePath+"/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(basePath+"/swagger.json"),
		httpSwagger.InstanceName(InstanceName),
	))
}
