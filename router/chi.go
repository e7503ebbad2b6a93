// Package router composes the edge server: shared middleware, metrics,
// legacy and locale redirects, the backend proxy, page-data routes and API
// docs.
package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/config"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
	"github.com/platform-smith-labs/siteedge/locale"
	"github.com/platform-smith-labs/siteedge/metrics"
	httpMiddleware "github.com/platform-smith-labs/siteedge/middleware/http"
	"github.com/platform-smith-labs/siteedge/proxy"
	"github.com/platform-smith-labs/siteedge/site"
	"github.com/platform-smith-labs/siteedge/swagger"
	"github.com/prometheus/client_golang/prometheus"
)

// DocsPath is where Swagger UI and the OpenAPI document are served.
const DocsPath = "/docs"

// Options configures New.
type Options struct {
	Config config.Config
	Logger *slog.Logger

	// Registerer receives every collector. Nil selects
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Pages renders locale-prefixed pages that no route matches. Nil
	// answers 404 NOT_FOUND.
	Pages http.Handler
}

// New builds the server handler.
//
// CORS denies every origin unless Config.AllowedOrigins lists some. Never
// configure "*" in production.
func New(opts Options) (chi.Router, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metricsOpts := metrics.DefaultMetricsOptions()
	backendMetrics := metrics.NewBackendCollector(metricsOpts, opts.Registerer)

	api, err := apiclient.New(apiclient.Config{
		BaseURL:  cfg.BackendURL(),
		Timeout:  cfg.APITimeout,
		Logger:   logger,
		Observer: backendMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("router: backend client: %w", err)
	}

	backendProxy, err := proxy.New(cfg.BackendURL(), logger, proxy.Options{ResponseHeaderTimeout: cfg.APITimeout})
	if err != nil {
		return nil, fmt.Errorf("router: backend proxy: %w", err)
	}

	skip := append(append([]string{}, locale.DefaultSkipPrefixes...), cfg.MetricsPath, "/healthz", DocsPath)
	resolver, err := locale.NewResolver(locale.Options{Default: cfg.Locale(), SkipPrefixes: skip})
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	r := chi.NewRouter()

	// Chi built-in middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(corsOptions(cfg.AllowedOrigins)))

	r.Use(httpMiddleware.WithRequestID())
	r.Use(httpMiddleware.WithLogging(logger))

	// Registers /metrics, so every Use must come before it
	metrics.EnablePrometheusMetrics(r, cfg.MetricsPath, metricsOpts, opts.Registerer)

	// Locale handling wraps the whole subrouter so unmatched page paths
	// are redirected too
	siteRouter := chi.NewRouter()
	siteRouter.Use(locale.LegacyMiddleware(cfg.Redirects()))
	siteRouter.Use(locale.Middleware(resolver, logger))

	siteRouter.Handle(apiclient.LegacyPrefix, backendProxy)
	siteRouter.Handle(apiclient.LegacyPrefix+"/*", backendProxy)

	registry := handler.NewRegistry()
	site.Register(registry, site.Options{
		SiteURL:          cfg.SiteURL,
		PublicAPIURL:     cfg.PublicAPIURL,
		ConfigKeys:       cfg.SiteConfigKeys,
		ContactRateLimit: cfg.ContactRateLimit,
		ContactRateBurst: cfg.ContactRateBurst,
		Logger:           logger,
	})
	registry.RegisterRoutes(siteRouter, api, logger)

	swagger.SetupSwaggerUI(siteRouter, DocsPath, registry, swagger.DefaultInfo(), logger)

	pages := opts.Pages
	if pages == nil {
		pages = core.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			return core.NewAPIError(http.StatusNotFound, "Page not found", r.URL.Path)
		})
	}
	siteRouter.NotFound(pages.ServeHTTP)

	r.Mount("/", siteRouter)

	return r, nil
}

// corsOptions allows only the listed origins. go-chi/cors treats an empty
// list as "allow all", so that case gets an origin func that rejects
// everything.
func corsOptions(allowedOrigins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", httpMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{httpMiddleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
	}
	return opts
}
