package locale

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// CookieName stores the visitor's resolved locale.
	CookieName = "site_locale"

	// CookieMaxAge keeps the locale cookie for one year.
	CookieMaxAge = 365 * 24 * time.Hour
)

// DefaultSkipPrefixes are path prefixes that never receive a locale prefix:
// build-internal bundles, the backend API and static assets.
var DefaultSkipPrefixes = []string{
	"/_next",
	"/_internal",
	"/api",
	"/static",
	"/assets",
	"/images",
	"/fonts",
}

// Options configures a Resolver. Zero values select the package defaults.
type Options struct {
	Default      Locale
	CookieName   string
	CookieMaxAge time.Duration
	SkipPrefixes []string
}

// Resolver maps requests to a supported locale. It holds no per-request
// state and is safe for concurrent use.
type Resolver struct {
	def          Locale
	cookieName   string
	cookieMaxAge time.Duration
	skipPrefixes []string
}

// Request carries the inputs the resolver reads from an HTTP request.
type Request struct {
	Path           string
	RawQuery       string
	CookieValue    string
	AcceptLanguage string
}

// Decision is the resolver's verdict for one request. The caller performs
// the redirect and cookie write.
type Decision struct {
	Locale Locale

	// Redirect is set when the path lacks a locale prefix; RedirectURL is
	// the prefixed path including the original query string.
	Redirect    bool
	RedirectURL string

	// Cookie is non-nil when the locale should be (re)persisted.
	Cookie *http.Cookie

	// Skip is set for excluded paths: no redirect and no cookie.
	Skip bool
}

// NewResolver validates opts and builds a Resolver.
func NewResolver(opts Options) (*Resolver, error) {
	def := opts.Default
	if def == "" {
		def = Default
	}
	if _, ok := Parse(string(def)); !ok {
		return nil, fmt.Errorf("locale: default locale %q is not supported", def)
	}

	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = CookieName
	}

	maxAge := opts.CookieMaxAge
	if maxAge <= 0 {
		maxAge = CookieMaxAge
	}

	skip := opts.SkipPrefixes
	if skip == nil {
		skip = DefaultSkipPrefixes
	}
	normalized := make([]string, 0, len(skip))
	for _, p := range skip {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		normalized = append(normalized, p)
	}

	return &Resolver{
		def:          def,
		cookieName:   cookieName,
		cookieMaxAge: maxAge,
		skipPrefixes: normalized,
	}, nil
}

// CookieName returns the name of the locale cookie.
func (r *Resolver) CookieName() string {
	return r.cookieName
}

// DefaultLocale returns the fallback locale.
func (r *Resolver) DefaultLocale() Locale {
	return r.def
}

// RequestFrom extracts resolver inputs from an HTTP request.
func (r *Resolver) RequestFrom(req *http.Request) Request {
	in := Request{
		Path:           req.URL.Path,
		RawQuery:       req.URL.RawQuery,
		AcceptLanguage: req.Header.Get("Accept-Language"),
	}
	if c, err := req.Cookie(r.cookieName); err == nil {
		in.CookieValue = c.Value
	}
	return in
}

// Resolve decides the locale and the action for one request.
func (r *Resolver) Resolve(req Request) Decision {
	if l, ok := PathLocale(req.Path); ok {
		return Decision{Locale: l, Cookie: r.Cookie(l)}
	}

	detected := r.Detect(req.CookieValue, req.AcceptLanguage)

	if r.Excluded(req.Path) {
		return Decision{Locale: detected, Skip: true}
	}

	return Decision{
		Locale:      detected,
		Redirect:    true,
		RedirectURL: PrefixPath(detected, req.Path, req.RawQuery),
	}
}

// Detect applies the priority cookie, Accept-Language, default.
func (r *Resolver) Detect(cookieValue, acceptLanguage string) Locale {
	if l, ok := Parse(cookieValue); ok {
		return l
	}
	if l, ok := MatchAcceptLanguage(acceptLanguage); ok {
		return l
	}
	return r.def
}

// Excluded reports whether p is an internal, API or asset path, or names a
// file. Only the last path segment is checked for an extension, so a dotted
// directory such as /v1.2/docs is still redirected.
func (r *Resolver) Excluded(p string) bool {
	for _, prefix := range r.skipPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	last := p[strings.LastIndexByte(p, '/')+1:]
	return last != "" && path.Ext(last) != ""
}

// Cookie builds the site-wide locale cookie for l.
func (r *Resolver) Cookie(l Locale) *http.Cookie {
	return &http.Cookie{
		Name:     r.cookieName,
		Value:    l.String(),
		Path:     "/",
		MaxAge:   int(r.cookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}

// MatchAcceptLanguage walks the header's tags in the order given and returns
// the first whose primary subtag is supported. Quality weights are ignored.
// The primary subtag is everything before the first '-' or '_' and must be
// exactly two letters, so "en-1" matches English while "eng" and "tur" do not.
func MatchAcceptLanguage(header string) (Locale, bool) {
	for _, part := range strings.Split(header, ",") {
		tagText := strings.TrimSpace(part)
		if i := strings.IndexByte(tagText, ';'); i >= 0 {
			tagText = strings.TrimSpace(tagText[:i])
		}
		if i := strings.IndexAny(tagText, "-_"); i >= 0 {
			tagText = tagText[:i]
		}
		if !isTwoLetters(tagText) {
			continue
		}

		base, err := language.ParseBase(tagText)
		if err != nil {
			continue
		}
		if l, ok := Parse(base.String()); ok {
			return l, true
		}
	}
	return "", false
}

func isTwoLetters(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// PathLocale returns the locale named by the first segment of p.
// Matching is exact: "/tr" and "/tr/x" match, "/travel" and "/TR" do not.
func PathLocale(p string) (Locale, bool) {
	segment := strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	for _, l := range Supported {
		if segment == string(l) {
			return l, true
		}
	}
	return "", false
}

// PrefixPath returns p under the locale segment, keeping the query string.
func PrefixPath(l Locale, p, rawQuery string) string {
	target := "/" + l.String()
	if p != "" && p != "/" {
		if !strings.HasPrefix(p, "/") {
			target += "/"
		}
		target += p
	}
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}
