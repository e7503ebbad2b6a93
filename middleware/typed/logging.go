package typed

import (
	"net/http"
	"time"

	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
)

// WithLogging logs the outcome of a typed handler with its locale and, for
// failures, the error kind.
//
// List it early in MakeHandler so it wraps parsing and the backend call.
//
// Dependencies: ctx.Logger from HandlerContext
// Context modifications: None
// Use: Apply via MakeHandler(reg, info, myHandler, ResponseJSON, WithLogging, ParseBody)
func WithLogging[ParamTypeT any, BodyTypeT any, ResponseBodyT any](
	next handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT],
) handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT] {
	return func(ctx handler.HandlerContext[ParamTypeT, BodyTypeT], w http.ResponseWriter, r *http.Request) (ResponseBodyT, error) {
		start := time.Now()

		response, err := next(ctx, w, r)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"locale", ctx.Locale,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err == nil {
			ctx.Logger.Info("Handler completed", fields...)
			return response, nil
		}

		if apiErr, ok := core.AsAPIError(err); ok {
			fields = append(fields, "status", apiErr.StatusCode, "code", apiErr.Code)
		}
		ctx.Logger.Warn("Handler failed", append(fields, "error", err.Error())...)
		return response, err
	}
}
