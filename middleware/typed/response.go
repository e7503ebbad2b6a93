package typed

import (
	"net/http"

	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
)

// ResponseJSON handles writing successful responses as JSON.
//
// It should be the first in the chain so it sees the final result. POST
// handlers answer 201 Created, everything else 200 OK. Errors are passed
// through untouched for the adapter to write.
//
// Dependencies: core.JSON
// Context modifications: None
// Use: Apply via MakeHandler(reg, info, myHandler, ResponseJSON, ParseBody)
func ResponseJSON[ParamTypeT any, BodyTypeT any, ResponseBodyT any](next handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT]) handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT] {
	return func(ctx handler.HandlerContext[ParamTypeT, BodyTypeT], w http.ResponseWriter, r *http.Request) (ResponseBodyT, error) {
		responseData, err := next(ctx, w, r)
		if err != nil {
			return responseData, err
		}

		statusCode := http.StatusOK
		if r.Method == http.MethodPost {
			statusCode = http.StatusCreated
		}

		if err := core.JSON(w, statusCode, responseData); err != nil {
			// Headers are already out; only logging is left
			ctx.Logger.Error("Failed to write JSON response", "error", err.Error(), "path", r.URL.Path)
		}

		return responseData, nil
	}
}
