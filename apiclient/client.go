// Package apiclient is the typed client for the versioned content backend.
//
// Every call normalizes its endpoint under /api/v1, runs under its own
// timeout and reports failures as *core.APIError, so callers can branch on
// core.ErrorCode instead of raw status codes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/platform-smith-labs/siteedge/core"
	mhttp "github.com/platform-smith-labs/siteedge/middleware/http"
)

const (
	// DefaultInternalURL is used for server-side calls when no internal
	// backend address is configured.
	DefaultInternalURL = "http://localhost:8000"

	// VersionPrefix is the canonical path prefix of the backend API.
	VersionPrefix = "/api/v1"

	// LegacyPrefix is the unversioned prefix older callers still use.
	LegacyPrefix = "/api"

	// DefaultTimeout bounds a single call when neither the client nor the
	// request sets one.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 4 << 10
)

// Side says where a caller runs, which decides the backend base address.
type Side int

const (
	// SideServer calls the backend directly over the internal network.
	SideServer Side = iota
	// SideBrowser calls same-origin paths routed by the edge proxy.
	SideBrowser
)

func (s Side) String() string {
	if s == SideBrowser {
		return "browser"
	}
	return "server"
}

// ResolveBaseURL returns the backend base for side. Server callers get the
// internal URL, or DefaultInternalURL when it is empty; browser callers get
// "" so requests stay same-origin.
func ResolveBaseURL(side Side, internalURL string) string {
	if side == SideBrowser {
		return ""
	}
	if u := strings.TrimRight(strings.TrimSpace(internalURL), "/"); u != "" {
		return u
	}
	return DefaultInternalURL
}

// NormalizeEndpoint rewrites endpoint to live under VersionPrefix.
//
//	/api/v1/projects -> /api/v1/projects
//	/api/projects    -> /api/v1/projects
//	/projects        -> /api/v1/projects
//	projects         -> /api/v1/projects
//
// Prefixes match whole path segments, so /apiary becomes /api/v1/apiary.
func NormalizeEndpoint(endpoint string) string {
	p := endpoint
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if hasSegmentPrefix(p, VersionPrefix) {
		return p
	}
	if hasSegmentPrefix(p, LegacyPrefix) {
		return VersionPrefix + p[len(LegacyPrefix):]
	}
	return VersionPrefix + p
}

func hasSegmentPrefix(p, prefix string) bool {
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	rest := p[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}

// Observer receives one report per backend call.
type Observer interface {
	ObserveRequest(method, route string, status int, code core.ErrorCode, duration time.Duration)
}

// Config configures a Client. Zero values select defaults.
type Config struct {
	// BaseURL is prepended to every normalized endpoint. Use ResolveBaseURL
	// to pick it.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Observer   Observer
	UserAgent  string
}

// Client calls the backend. It is safe for concurrent use; the only state
// shared between calls is the underlying connection pool.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
	userAgent  string
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("apiclient: parse base url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("apiclient: base url %q must be http or https", base)
		}
	}

	c := &Client{
		baseURL:    base,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
		userAgent:  cfg.UserAgent,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.userAgent == "" {
		c.userAgent = "siteedge"
	}
	return c, nil
}

// BaseURL returns the base prepended to every endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL a call to endpoint is sent to.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + NormalizeEndpoint(endpoint)
}

// RequestOptions are the per-call settings of Do.
type RequestOptions struct {
	// Method defaults to GET.
	Method string

	// Body is encoded as JSON when non-nil.
	Body any

	// Header is merged over the defaults; caller values win.
	Header http.Header

	// Timeout overrides the client timeout for this call.
	Timeout time.Duration

	// Route is the low-cardinality label reported to the Observer. It
	// defaults to the normalized path.
	Route string
}

// Do sends one request and decodes a successful JSON body into T.
//
// The call is bounded by its timeout; when the timer fires first the
// in-flight request is aborted and a 408 TIMEOUT error is returned. Non-2xx
// responses become an APIError carrying the status, its ErrorCode and the
// response body as Detail. An empty body or a 204 yields the zero T.
func Do[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	var result T

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.URL(endpoint)
	route := opts.Route
	if route == "" {
		route = NormalizeEndpoint(endpoint)
		if i := strings.IndexByte(route, '?'); i >= 0 {
			route = route[:i]
		}
	}

	start := time.Now()
	status, body, err := c.send(ctx, method, target, opts)
	if err == nil && len(bytes.TrimSpace(body)) > 0 && status != http.StatusNoContent {
		if decodeErr := json.Unmarshal(body, &result); decodeErr != nil {
			err = core.WrapAPIError(http.StatusBadGateway, core.CodeInternal, "API Error: invalid response body", decodeErr)
		}
	}
	duration := time.Since(start)

	code := core.ErrorCode("")
	if err != nil {
		code = core.CodeInternal
		if apiErr, ok := core.AsAPIError(err); ok {
			code = apiErr.Code
			status = apiErr.StatusCode
		}
	}
	if c.observer != nil {
		c.observer.ObserveRequest(method, route, status, code, duration)
	}

	logFields := []any{
		"method", method,
		"route", route,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	}
	if requestID := mhttp.RequestIDFromContext(ctx); requestID != "" {
		logFields = append(logFields, "request_id", requestID)
	}
	if err != nil {
		c.logger.Warn("Backend request failed", append(logFields, "code", code, "error", err.Error())...)
		var zero T
		return zero, err
	}
	c.logger.Debug("Backend request", logFields...)
	return result, nil
}

// send performs the exchange and returns the raw success body. Every error
// it returns is a *core.APIError.
func (c *Client) send(ctx context.Context, method, target string, opts RequestOptions) (int, []byte, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return 0, nil, core.WrapAPIError(0, core.CodeInternal, "API Error: encode request body", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, nil, core.WrapAPIError(0, core.CodeInternal, "API Error: build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if requestID := mhttp.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(mhttp.RequestIDHeader, requestID)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, transportError(ctx, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := core.NewAPIError(resp.StatusCode, "API Error: "+statusText(resp), strings.TrimSpace(string(detail)))
		return resp.StatusCode, nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, transportError(ctx, timeout, err)
	}
	return resp.StatusCode, body, nil
}

func transportError(ctx context.Context, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		apiErr := core.WrapAPIError(http.StatusRequestTimeout, core.CodeTimeout, "API Error: Request Timeout", err)
		apiErr.Detail = "request exceeded " + timeout.String()
		return apiErr
	}
	return core.WrapAPIError(0, core.CodeInternal, "API Error: request failed", err)
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
