// Package site registers the typed page-data routes the localized pages
// read from: project listings, project detail, the contact form, public site
// settings and the health probe.
package site

import (
	"log/slog"
	"net/http"

	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/handler"
	httpMiddleware "github.com/platform-smith-labs/siteedge/middleware/http"
	"github.com/platform-smith-labs/siteedge/middleware/typed"
)

// Options configures the page-data routes.
type Options struct {
	// SiteURL is the public origin of the site.
	SiteURL string

	// PublicAPIURL is the backend origin advertised to browsers. Empty means
	// same-origin through the /api proxy.
	PublicAPIURL string

	// ConfigKeys are the backend config entries exposed by /content/site.
	ConfigKeys []string

	// ContactRateLimit and ContactRateBurst bound contact submissions per
	// client IP.
	ContactRateLimit float64
	ContactRateBurst int

	Logger *slog.Logger
}

// Register records every page-data route on reg.
func Register(reg *handler.Registry, opts Options) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ContactRateLimit <= 0 {
		opts.ContactRateLimit = 0.2
	}
	if opts.ContactRateBurst < 1 {
		opts.ContactRateBurst = 3
	}

	handler.MakeHandler(reg,
		handler.RouteInfo{
			Method:      http.MethodGet,
			Path:        "/{locale}/content/projects",
			Summary:     "List projects",
			Description: "Published reference projects, optionally filtered by category",
			Tags:        []string{"content"},
		},
		ListProjects,
		typed.ResponseJSON, typed.WithRequestID, typed.WithLogging, typed.WithLocale, typed.ParseParams,
	)

	handler.MakeHandler(reg,
		handler.RouteInfo{
			Method:  http.MethodGet,
			Path:    "/{locale}/content/projects/{slug}",
			Summary: "Get project",
			Tags:    []string{"content"},
		},
		GetProject,
		typed.ResponseJSON, typed.WithRequestID, typed.WithLogging, typed.WithLocale, typed.ParseParams,
	)

	handler.MakeHandler(reg,
		handler.RouteInfo{
			Method:        http.MethodPost,
			Path:          "/{locale}/content/contact",
			Summary:       "Submit consultation request",
			Description:   "Validates the contact form and forwards it to the backend",
			Tags:          []string{"contact"},
			SuccessStatus: http.StatusCreated,
			Use: []func(http.Handler) http.Handler{
				httpMiddleware.WithRateLimit(opts.ContactRateLimit, opts.ContactRateBurst, opts.Logger),
			},
		},
		SubmitContact,
		typed.ResponseJSON, typed.WithRequestID, typed.WithLogging, typed.WithLocale, typed.ParseBody,
	)

	handler.MakeHandler(reg,
		handler.RouteInfo{
			Method:  http.MethodGet,
			Path:    "/{locale}/content/site",
			Summary: "Public site settings",
			Tags:    []string{"content"},
		},
		SiteInfoHandler(opts),
		typed.ResponseJSON, typed.WithRequestID, typed.WithLogging, typed.WithLocale,
	)

	handler.MakeHandler(reg,
		handler.RouteInfo{
			Method:  http.MethodGet,
			Path:    "/healthz",
			Summary: "Health check",
			Tags:    []string{"ops"},
		},
		Healthz,
		typed.WithRequestID,
	)
}

// browserAPIBase is the base browsers should use for backend calls.
func browserAPIBase(publicURL string) string {
	if publicURL != "" {
		return apiclient.ResolveBaseURL(apiclient.SideServer, publicURL)
	}
	return apiclient.ResolveBaseURL(apiclient.SideBrowser, "")
}
