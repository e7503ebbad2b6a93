// Package proxy forwards same-origin /api requests from the browser to the
// content backend.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/core"
	mhttp "github.com/platform-smith-labs/siteedge/middleware/http"
)

// Options tunes the proxy. Zero values select defaults.
type Options struct {
	// Transport is used for upstream requests; nil selects a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper

	// ResponseHeaderTimeout bounds the wait for upstream headers.
	ResponseHeaderTimeout time.Duration
}

// New returns a handler that rewrites every request path with
// apiclient.NormalizeEndpoint and forwards it to target.
func New(target string, logger *slog.Logger, opts Options) (http.Handler, error) {
	upstream, err := url.Parse(strings.TrimRight(target, "/"))
	if err != nil {
		return nil, fmt.Errorf("proxy: parse target: %w", err)
	}
	if upstream.Scheme != "http" && upstream.Scheme != "https" {
		return nil, fmt.Errorf("proxy: target %q must be http or https", target)
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.ResponseHeaderTimeout > 0 {
			t.ResponseHeaderTimeout = opts.ResponseHeaderTimeout
		} else {
			t.ResponseHeaderTimeout = apiclient.DefaultTimeout
		}
		transport = t
	}

	rp := &httputil.ReverseProxy{
		Transport: transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = apiclient.NormalizeEndpoint(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			pr.SetURL(upstream)
			pr.Out.Host = upstream.Host
			pr.SetXForwarded()
			if requestID := mhttp.RequestIDFromContext(pr.In.Context()); requestID != "" {
				pr.Out.Header.Set(mhttp.RequestIDHeader, requestID)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
				return
			}
			logger.Error("Backend proxy failed",
				"method", r.Method,
				"path", r.URL.Path,
				"upstream", upstream.Host,
				"error", err.Error(),
				"request_id", mhttp.GetRequestID(r),
			)
			core.WriteAPIError(w, r, *core.ErrServiceUnavailable.Wrap(err))
		},
	}
	return rp, nil
}
