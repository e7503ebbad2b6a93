// Package validation owns the shared go-playground/validator instance used by
// the typed middleware and the backend API client.
//
// Field names in errors follow the JSON tags so messages match the API
// contract, and site-specific rules are registered once at init.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/locale"
)

// TagSiteLocale validates that a string field names a supported locale.
const TagSiteLocale = "site_locale"

var (
	validate  = New()
	snakeCase = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// New builds a validator with JSON tag names and the site rules registered.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		jsonTag := fld.Tag.Get("json")
		if jsonTag != "" && jsonTag != "-" {
			name := strings.Split(jsonTag, ",")[0]
			if name != "" {
				return name
			}
		}
		return toSnakeCase(fld.Name)
	})

	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation(TagSiteLocale, siteLocale)

	return v
}

// Validator returns the shared instance.
func Validator() *validator.Validate {
	return validate
}

// Struct validates s with the shared instance.
func Struct(s any) error {
	return validate.Struct(s)
}

// ToAPIError converts a validation failure to a 400 VALIDATION_ERROR with
// one entry per offending field. Errors that are not validator failures are
// wrapped as a plain 400.
func ToAPIError(err error, message string) *core.APIError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return core.NewAPIError(http.StatusBadRequest, message, err.Error())
	}

	apiErr := core.NewValidationError(message)
	for field, messages := range FieldErrors(validationErrors) {
		apiErr.AddField(field, strings.Join(messages, " || "))
	}
	return apiErr
}

// FieldErrors converts validator.ValidationErrors to a structured field map
func FieldErrors(validationErrors validator.ValidationErrors) map[string][]string {
	fieldErrors := make(map[string][]string)

	for _, fieldError := range validationErrors {
		fieldName := strings.ToLower(fieldError.Field())

		// "CreateUserRequest.Password" -> "password"
		if dotIndex := strings.LastIndex(fieldName, "."); dotIndex != -1 {
			fieldName = fieldName[dotIndex+1:]
		}

		fieldErrors[fieldName] = append(fieldErrors[fieldName], fieldMessage(fieldError))
	}

	return fieldErrors
}

// fieldMessage converts validator field error to user-friendly message
func fieldMessage(fieldError validator.FieldError) string {
	fieldName := fieldError.Field()
	tag := fieldError.Tag()
	param := fieldError.Param()

	if dotIndex := strings.LastIndex(fieldName, "."); dotIndex != -1 {
		fieldName = fieldName[dotIndex+1:]
	}

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", fieldName)
	case "min":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fieldName, param)
		}
		return fmt.Sprintf("%s must be at least %s", fieldName, param)
	case "max":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fieldName, param)
		}
		return fmt.Sprintf("%s must be at most %s", fieldName, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fieldName)
	case "e164":
		return fmt.Sprintf("%s must be a phone number in international format", fieldName)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldName, param)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fieldName)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fieldName)
	case TagSiteLocale:
		return fmt.Sprintf("%s must be a supported locale", fieldName)
	default:
		return fmt.Sprintf("%s validation failed on '%s' tag", fieldName, tag)
	}
}

func siteLocale(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, ok := locale.Parse(fl.Field().String())
	return ok
}

// toSnakeCase converts PascalCase/camelCase to snake_case
func toSnakeCase(str string) string {
	return strings.ToLower(snakeCase.ReplaceAllString(str, "${1}_${2}"))
}
