package locale

import (
	"net/http"
	"strings"
)

// LegacyRedirects maps retired paths to their current replacements.
// Keys and values are site paths; values may carry their own locale prefix
// or be left for the locale middleware to prefix on the next hop.
type LegacyRedirects map[string]string

// DefaultLegacyRedirects returns the redirect table shipped with the site.
func DefaultLegacyRedirects() LegacyRedirects {
	return LegacyRedirects{
		"/hakkimizda": "/tr/about",
		"/iletisim":   "/tr/contact",
		"/urunler":    "/tr/products",
		"/about-us":   "/en/about",
		"/contact-us": "/en/contact",
		"/solutions":  "/products",
		"/privacy":    "/legal/privacy",
		"/kvkk":       "/tr/legal/privacy",
		"/coldchain":  "/products/cold-chain",
		"/firelink":   "/products/fire-link",
	}
}

// Lookup returns the replacement for p. A single trailing slash on p is
// ignored.
func (t LegacyRedirects) Lookup(p string) (string, bool) {
	if target, ok := t[p]; ok {
		return target, true
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		target, ok := t[strings.TrimSuffix(p, "/")]
		return target, ok
	}
	return "", false
}

// LegacyMiddleware permanently redirects (308) every path in the table and
// keeps the original query string unless the target defines its own.
//
// Use: Apply before locale.Middleware so retired paths are not prefixed first.
func LegacyMiddleware(table LegacyRedirects) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(table) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target, ok := table.Lookup(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if r.URL.RawQuery != "" && !strings.Contains(target, "?") {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}
