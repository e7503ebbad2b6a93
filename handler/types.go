package handler

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/locale"
)

// HandlerContext contains application dependencies and request-scoped data
// ParamTypeT represents the type of parameters (URL/query params)
// BodyTypeT represents the type of request body
type HandlerContext[ParamTypeT any, BodyTypeT any] struct {
	// Request context (propagated from r.Context())
	// Used for cancellation, timeouts, and request-id forwarding to the backend
	Context context.Context

	// Application dependencies
	API    *apiclient.Client
	Logger *slog.Logger

	// Locale resolved for the request; WithLocale overrides it from the URL
	Locale locale.Locale

	// Request-scoped data
	Params    Nullable[ParamTypeT] // Optional parameters from URL/query
	Body      Nullable[BodyTypeT]  // Optional request body
	BodyRaw   Nullable[[]byte]     // Raw request body bytes
	RequestID Nullable[string]     // Set by the RequestID middleware
}

// Handler represents a generic handler function that receives typed context and returns response data
type Handler[ParamTypeT any, BodyTypeT any, ResponseBodyT any] func(ctx HandlerContext[ParamTypeT, BodyTypeT], w http.ResponseWriter, r *http.Request) (ResponseBodyT, error)

// Middleware represents a function that wraps a Handler and can enrich the context
type Middleware[ParamTypeT any, BodyTypeT any, ResponseBodyT any] func(Handler[ParamTypeT, BodyTypeT, ResponseBodyT]) Handler[ParamTypeT, BodyTypeT, ResponseBodyT]

// RouteInfo holds route metadata for registration and documentation
type RouteInfo struct {
	Method      string   // HTTP method (GET, POST, PUT, DELETE, etc.)
	Path        string   // Route path pattern
	Summary     string   // Optional: Brief description for Swagger (auto-generated if empty)
	Description string   // Optional: Detailed description for Swagger (auto-generated if empty)
	Tags        []string // Optional: Tags for grouping in Swagger UI

	// SuccessStatus documents the status written on success. Default 200.
	SuccessStatus int

	// Use holds plain HTTP middleware applied to this route only, such as
	// rate limiting.
	Use []func(http.Handler) http.Handler
}

// AdaptableHandler interface knows how to create an adapted http.HandlerFunc
type AdaptableHandler interface {
	Adapt(api *apiclient.Client, logger *slog.Logger) http.HandlerFunc
}

// TypedHandler wraps any Handler type and implements AdaptableHandler
type TypedHandler[ParamTypeT any, BodyTypeT any, ResponseBodyT any] struct {
	handler Handler[ParamTypeT, BodyTypeT, ResponseBodyT]
}

// Adapt converts the typed handler to http.HandlerFunc using AdaptHandler
func (th TypedHandler[ParamTypeT, BodyTypeT, ResponseBodyT]) Adapt(api *apiclient.Client, logger *slog.Logger) http.HandlerFunc {
	return AdaptHandler(api, logger, th.handler)
}

// PendingRoute stores route information for handlers that need to be registered later
type PendingRoute struct {
	Method          string
	Path            string
	Handler         AdaptableHandler // Interface that knows how to adapt itself
	RouteInfo       RouteInfo        // Complete route metadata for documentation
	MiddlewareNames []string         // Names of middleware functions applied to this route

	// Type parameters of the handler, kept for documentation
	ParamType    reflect.Type
	BodyType     reflect.Type
	ResponseType reflect.Type
}

// Registry collects typed routes until they are mounted on a router.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	routes []PendingRoute
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// MakeHandler composes middleware around baseHandler and records the route on reg.
// Usage: MakeHandler(reg, RouteInfo{Method: "GET", Path: "/{locale}/content/site"}, baseHandler, middleware...)
// Execution order: first middleware -> ... -> last middleware -> baseHandler
func MakeHandler[ParamTypeT any, BodyTypeT any, ResponseBodyT any](
	reg *Registry,
	routeInfo RouteInfo,
	baseHandler Handler[ParamTypeT, BodyTypeT, ResponseBodyT],
	middleware ...Middleware[ParamTypeT, BodyTypeT, ResponseBodyT],
) Handler[ParamTypeT, BodyTypeT, ResponseBodyT] {
	handler := baseHandler

	middlewareNames := make([]string, len(middleware))
	for i, mw := range middleware {
		middlewareNames[i] = getMiddlewareName(mw)
	}

	// Wrap in reverse so the first middleware listed runs outermost
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}

	reg.add(PendingRoute{
		Method:          routeInfo.Method,
		Path:            routeInfo.Path,
		Handler:         TypedHandler[ParamTypeT, BodyTypeT, ResponseBodyT]{handler: handler},
		RouteInfo:       routeInfo,
		MiddlewareNames: middlewareNames,
		ParamType:       reflect.TypeFor[ParamTypeT](),
		BodyType:        reflect.TypeFor[BodyTypeT](),
		ResponseType:    reflect.TypeFor[ResponseBodyT](),
	})

	return handler
}

func (reg *Registry) add(route PendingRoute) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.routes = append(reg.routes, route)
}

// RegisterRoutes mounts every collected route on r with the given dependencies
func (reg *Registry) RegisterRoutes(r chi.Router, api *apiclient.Client, logger *slog.Logger) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, route := range reg.routes {
		adaptedHandler := route.Handler.Adapt(api, logger)
		target := r
		if len(route.RouteInfo.Use) > 0 {
			target = r.With(route.RouteInfo.Use...)
		}
		registerRoute(target, route.Method, route.Path, adaptedHandler)
	}
}

// GetRoutes returns a copy of all collected routes for reflection/documentation
func (reg *Registry) GetRoutes() []PendingRoute {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	routes := make([]PendingRoute, len(reg.routes))
	copy(routes, reg.routes)
	return routes
}

// registerRoute helper function to reduce code duplication
func registerRoute(r chi.Router, method, path string, handler http.HandlerFunc) {
	switch method {
	case http.MethodGet:
		r.Get(path, handler)
	case http.MethodPost:
		r.Post(path, handler)
	case http.MethodPut:
		r.Put(path, handler)
	case http.MethodDelete:
		r.Delete(path, handler)
	case http.MethodPatch:
		r.Patch(path, handler)
	case http.MethodHead:
		r.Head(path, handler)
	case http.MethodOptions:
		r.Options(path, handler)
	}
}

var genericFuncName = regexp.MustCompile(`\.([A-Za-z_][A-Za-z0-9_]*)\[`)

// getMiddlewareName extracts the function name from a middleware function using reflection
func getMiddlewareName[ParamTypeT any, BodyTypeT any, ResponseBodyT any](middleware Middleware[ParamTypeT, BodyTypeT, ResponseBodyT]) string {
	funcForPC := runtime.FuncForPC(reflect.ValueOf(middleware).Pointer())
	if funcForPC == nil {
		return "unknown"
	}

	// Generic functions look like package/path.FunctionName[...]
	fullName := funcForPC.Name()
	if matches := genericFuncName.FindStringSubmatch(fullName); len(matches) > 1 {
		return matches[1]
	}

	parts := strings.Split(fullName, ".")
	lastName := parts[len(parts)-1]
	if bracketIndex := strings.Index(lastName, "["); bracketIndex != -1 {
		lastName = lastName[:bracketIndex]
	}
	if lastName != "" && lastName != "]" {
		return lastName
	}
	return "unknown"
}
