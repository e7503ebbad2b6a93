// Package typed provides generic typed middleware that works with Handler[ParamTypeT, BodyTypeT, ResponseBodyT].
// These middleware provide type-safe request handling with automatic validation.
// Use: Apply via MakeHandler composition
package typed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
	"github.com/platform-smith-labs/siteedge/middleware/validation"
)

// MaxBodyBytes caps request bodies read by ParseBody.
const MaxBodyBytes = 64 << 10

// ParseParams extracts and validates URL path parameters and query parameters.
//
// Fields tagged `param:"name"` are read with chi.URLParam and fields tagged
// `query:"name"` from the query string, converted to the field's kind and
// validated with the shared validator.
//
// Dependencies: chi.URLParam, validation
// Context modifications: Sets ctx.Params
// Use: Apply via MakeHandler(..., ParseParams, ...)
//
// Example:
//
//	type ProjectParams struct {
//	    Slug string `param:"slug" validate:"required,max=120"`
//	}
func ParseParams[ParamTypeT any, BodyTypeT any, ResponseBodyT any](next handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT]) handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT] {
	return func(ctx handler.HandlerContext[ParamTypeT, BodyTypeT], w http.ResponseWriter, r *http.Request) (ResponseBodyT, error) {
		var zeroResponse ResponseBodyT

		if !expectsData[ParamTypeT]() {
			ctx.Params = handler.Nil[ParamTypeT]()
			return next(ctx, w, r)
		}

		var params ParamTypeT
		val := reflect.ValueOf(&params).Elem()
		typ := val.Type()
		query := r.URL.Query()

		for i := 0; i < val.NumField(); i++ {
			fieldType := typ.Field(i)

			var paramValue, paramName, paramKind string
			if tag := fieldType.Tag.Get("param"); tag != "" {
				paramValue, paramName, paramKind = chi.URLParam(r, tag), tag, "parameter"
			} else if tag := fieldType.Tag.Get("query"); tag != "" {
				paramValue, paramName, paramKind = query.Get(tag), tag, "query parameter"
			} else {
				continue
			}

			if paramValue == "" && isRequired(fieldType) {
				return zeroResponse, core.NewAPIError(http.StatusBadRequest,
					"Required "+paramKind+" '"+paramName+"' is missing")
			}

			if err := setFieldValue(val.Field(i), paramValue); err != nil {
				return zeroResponse, core.NewAPIError(http.StatusBadRequest,
					"Invalid "+paramKind+" '"+paramName+"': "+err.Error())
			}
		}

		if err := validation.Struct(params); err != nil {
			return zeroResponse, validation.ToAPIError(err, "Parameter validation failed")
		}

		ctx.Params = handler.NewNullable(params)
		return next(ctx, w, r)
	}
}

// ParseBody extracts and validates a JSON request body.
//
// The raw bytes are kept in ctx.BodyRaw. Handlers whose BodyTypeT is
// struct{} accept any or no body; all others fail fast with 400 when the body
// is missing, malformed, larger than MaxBodyBytes or invalid.
//
// Dependencies: json decoder, validation
// Context modifications: Sets ctx.Body and ctx.BodyRaw
// Use: Apply via MakeHandler(..., ParseBody, ...)
func ParseBody[ParamTypeT any, BodyTypeT any, ResponseBodyT any](next handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT]) handler.Handler[ParamTypeT, BodyTypeT, ResponseBodyT] {
	return func(ctx handler.HandlerContext[ParamTypeT, BodyTypeT], w http.ResponseWriter, r *http.Request) (ResponseBodyT, error) {
		var zeroResponse ResponseBodyT

		var rawBody []byte
		if r.Body != nil && r.Body != http.NoBody {
			var err error
			rawBody, err = io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					return zeroResponse, core.NewAPIError(http.StatusBadRequest,
						fmt.Sprintf("Request body exceeds %d bytes", MaxBodyBytes))
				}
				return zeroResponse, core.NewAPIError(http.StatusBadRequest, "Failed to read request body: "+err.Error())
			}
		}
		if len(rawBody) > 0 {
			ctx.BodyRaw = handler.NewNullable(rawBody)
		} else {
			ctx.BodyRaw = handler.Nil[[]byte]()
		}

		if !expectsData[BodyTypeT]() {
			ctx.Body = handler.Nil[BodyTypeT]()
			return next(ctx, w, r)
		}

		if len(rawBody) == 0 {
			return zeroResponse, core.NewAPIError(http.StatusBadRequest, "Request body is required")
		}

		var body BodyTypeT
		if err := json.Unmarshal(rawBody, &body); err != nil {
			return zeroResponse, core.NewAPIError(http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		}

		if err := validation.Struct(body); err != nil {
			return zeroResponse, validation.ToAPIError(err, "Validation failed")
		}

		ctx.Body = handler.NewNullable(body)
		return next(ctx, w, r)
	}
}

// expectsData reports whether T carries data, i.e. is not struct{}.
func expectsData[T any]() bool {
	t := reflect.TypeFor[T]()
	return t.Kind() != reflect.Struct || t.NumField() > 0
}

// isRequired checks if a field is marked as required in validation tags
func isRequired(field reflect.StructField) bool {
	for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

// setFieldValue sets the field value from string parameter
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}
	if value == "" {
		field.SetZero()
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intVal, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(intVal)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintVal, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(uintVal)
	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(floatVal)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(boolVal)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
