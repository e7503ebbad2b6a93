package typed

import (
	"log/slog"
	"net/http"

	"github.com/platform-smith-labs/siteedge/handler"
	httpMiddleware "github.com/platform-smith-labs/siteedge/middleware/http"
)

// WithRequestID enriches the handler logger with the request ID.
//
// The adapter already copies the ID set by http.WithRequestID into
// ctx.RequestID; this middleware fills it from the request when the handler
// is invoked directly, then tags every log line with request_id.
//
// Dependencies: http.WithRequestID applied on the router
// Context modifications: Sets ctx.RequestID, enriches ctx.Logger
// Use: Apply via MakeHandler(..., WithRequestID, WithLogging, ...)
func WithRequestID[ParamTypeT any, BodyTypeT any, ResponseBodyT any](
	next handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT],
) handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT] {
	return func(ctx handler.HandlerContext[ParamTypeT, BodyTypeT], w http.ResponseWriter, r *http.Request) (ResponseBodyT, error) {
		if !ctx.RequestID.HasValue() {
			if requestID := httpMiddleware.GetRequestID(r); requestID != "" {
				ctx.RequestID = handler.NewNullable(requestID)
			}
		}

		if requestID, ok := ctx.RequestID.TryValue(); ok && ctx.Logger != nil {
			ctx.Logger = ctx.Logger.With(slog.String("request_id", requestID))
		}

		return next(ctx, w, r)
	}
}
