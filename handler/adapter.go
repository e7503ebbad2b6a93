package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/locale"
	mhttp "github.com/platform-smith-labs/siteedge/middleware/http"
)

// AdaptHandler converts Handler[ParamTypeT, BodyTypeT, ResponseBodyT] to http.HandlerFunc.
//
// It injects the backend client and logger into the handler context, seeds
// the locale and request ID from the request context, and writes any
// returned error as an APIError envelope. Backend failures keep their status
// and kind.
//
// Example:
//
//	h := MakeHandler(reg, info, getProject, typed.WithLocale, typed.ParseParams, typed.ResponseJSON)
//	r.Get("/{locale}/content/projects/{slug}", AdaptHandler(api, logger, h))
func AdaptHandler[ParamTypeT any, BodyTypeT any, ResponseBodyT any](
	api *apiclient.Client,
	logger *slog.Logger,
	handler Handler[ParamTypeT, BodyTypeT, ResponseBodyT],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestCtx := r.Context()

		ctx := HandlerContext[ParamTypeT, BodyTypeT]{
			Context:   requestCtx,
			API:       api,
			Logger:    logger,
			Locale:    locale.FromContext(requestCtx),
			RequestID: Nil[string](),
		}
		if requestID := mhttp.RequestIDFromContext(requestCtx); requestID != "" {
			ctx.RequestID = NewNullable(requestID)
		}

		_, err := handler(ctx, w, r)
		if err == nil {
			// Response writing is delegated to middleware such as ResponseJSON
			return
		}

		if errors.Is(err, context.Canceled) && requestCtx.Err() != nil {
			// Client went away, nobody is left to read a response
			logger.Info("Request cancelled by client", "path", r.URL.Path)
			return
		}

		if apiErr, ok := core.AsAPIError(err); ok {
			logger.Debug("Handler returned API error",
				"status", apiErr.StatusCode,
				"code", apiErr.Code,
				"path", r.URL.Path,
			)
			core.WriteAPIError(w, r, *apiErr)
			return
		}

		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Request timeout", "path", r.URL.Path)
			core.WriteAPIError(w, r, *core.WrapAPIError(
				http.StatusGatewayTimeout,
				core.CodeTimeout,
				"Request timeout",
				err,
			))
			return
		}

		logger.Error("Handler error", "error", err.Error(), "path", r.URL.Path)
		core.WriteAPIError(w, r, *core.WrapAPIError(
			http.StatusInternalServerError,
			core.CodeInternal,
			"Internal server error",
			err,
		))
	}
}
