package locale

import (
	"log/slog"
	"net/http"
)

// Middleware applies the resolver's Decision to each request.
//
// Unprefixed page paths are redirected with 307 to their locale-prefixed
// equivalent. Prefixed paths pass through with the locale cookie refreshed.
// Excluded paths pass through untouched. In every pass-through case the
// locale is stored in the request context for FromContext.
//
// Use: Apply to chi router via r.Use(locale.Middleware(resolver, logger))
func Middleware(resolver *Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := resolver.Resolve(resolver.RequestFrom(r))

			if decision.Redirect {
				logger.Debug("Locale redirect",
					"path", r.URL.Path,
					"locale", decision.Locale.String(),
					"location", decision.RedirectURL,
				)
				w.Header().Add("Vary", "Cookie")
				w.Header().Add("Vary", "Accept-Language")
				http.Redirect(w, r, decision.RedirectURL, http.StatusTemporaryRedirect)
				return
			}

			if decision.Cookie != nil {
				http.SetCookie(w, decision.Cookie)
			}

			ctx := WithLocale(r.Context(), decision.Locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
