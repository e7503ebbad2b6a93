package typed

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
	"github.com/platform-smith-labs/siteedge/locale"
)

// LocaleParam is the chi URL parameter that carries the locale segment.
const LocaleParam = "locale"

// WithLocale reads the {locale} route segment into ctx.Locale.
//
// Routes mounted under /{locale}/ match any first segment, so an unsupported
// value is answered with 404 NOT_FOUND rather than served in the default
// language.
//
// Dependencies: chi.URLParam
// Context modifications: Sets ctx.Locale
// Use: Apply via MakeHandler(..., WithLocale, ...)
func WithLocale[ParamTypeT any, BodyTypeT any, ResponseBodyT any](next handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT]) handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT] {
	return func(ctx handler.HandlerContext[ParamTypeT, BodyTypeT], w http.ResponseWriter, r *http.Request) (ResponseBodyT, error) {
		segment := chi.URLParam(r, LocaleParam)

		// Exact match, same as the path prefix rule of the resolver
		l, ok := locale.Parse(segment)
		if !ok || l.String() != segment {
			var zeroResponse ResponseBodyT
			return zeroResponse, core.NewAPIError(http.StatusNotFound, "Unsupported locale", segment)
		}

		ctx.Locale = l
		ctx.Context = locale.WithLocale(ctx.Context, l)
		return next(ctx, w, r)
	}
}
