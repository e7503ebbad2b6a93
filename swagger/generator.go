// Package swagger builds an OpenAPI 2.0 document from the typed handler
// registry and serves it with Swagger UI.
package swagger

import (
	"encoding/json"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/spec"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
	"github.com/platform-smith-labs/siteedge/locale"
)

// Info describes the documented API.
type Info struct {
	Title       string
	Description string
	Version     string
	Host        string
	BasePath    string
}

// DefaultInfo returns the document header used by the server.
func DefaultInfo() Info {
	return Info{
		Title:       "Site Edge API",
		Description: "Page data, contact and health endpoints served by the site edge",
		Version:     "1.0.0",
		BasePath:    "/",
	}
}

var (
	pathParam   = regexp.MustCompile(`\{([^}/]+)\}`)
	timeType    = reflect.TypeFor[time.Time]()
	rawJSONType = reflect.TypeFor[json.RawMessage]()
	emptyStruct = reflect.TypeFor[struct{}]()
)

// GenerateSpec creates an OpenAPI document from the routes on registry.
func GenerateSpec(registry *handler.Registry, info Info) *spec.Swagger {
	if info.BasePath == "" {
		info.BasePath = "/"
	}

	swagger := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger: "2.0",
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       info.Title,
					Description: info.Description,
					Version:     info.Version,
				},
			},
			Host:        info.Host,
			BasePath:    info.BasePath,
			Schemes:     []string{"http", "https"},
			Consumes:    []string{"application/json"},
			Produces:    []string{"application/json"},
			Paths:       &spec.Paths{Paths: make(map[string]spec.PathItem)},
			Definitions: make(spec.Definitions),
		},
	}

	swagger.Definitions["APIError"] = *schemaFor(reflect.TypeFor[core.APIError](), swagger.Definitions)
	swagger.Definitions["ErrorResponse"] = spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type:       []string{"object"},
			Properties: map[string]spec.Schema{"error": *spec.RefSchema("#/definitions/APIError")},
			Required:   []string{"error"},
		},
	}

	for _, route := range registry.GetRoutes() {
		item := swagger.Paths.Paths[route.Path]
		op := generateOperation(route, swagger.Definitions)

		switch strings.ToUpper(route.Method) {
		case http.MethodGet:
			item.Get = op
		case http.MethodPost:
			item.Post = op
		case http.MethodPut:
			item.Put = op
		case http.MethodDelete:
			item.Delete = op
		case http.MethodPatch:
			item.Patch = op
		case http.MethodHead:
			item.Head = op
		case http.MethodOptions:
			item.Options = op
		default:
			continue
		}
		swagger.Paths.Paths[route.Path] = item
	}

	return swagger
}

// GenerateJSON returns the OpenAPI document as indented JSON.
func GenerateJSON(registry *handler.Registry, info Info) ([]byte, error) {
	return json.MarshalIndent(GenerateSpec(registry, info), "", "  ")
}

func generateOperation(route handler.PendingRoute, definitions spec.Definitions) *spec.Operation {
	op := &spec.Operation{
		OperationProps: spec.OperationProps{
			ID:          operationID(route),
			Summary:     route.RouteInfo.Summary,
			Description: route.RouteInfo.Description,
			Tags:        route.RouteInfo.Tags,
			Responses:   &spec.Responses{ResponsesProps: spec.ResponsesProps{StatusCodeResponses: make(map[int]spec.Response)}},
		},
	}
	if op.Summary == "" {
		op.Summary = route.Method + " " + route.Path
	}

	declared := map[string]bool{}
	if isDocumented(route.ParamType) {
		for _, p := range structParameters(route.ParamType) {
			if p.In == "path" {
				declared[p.Name] = true
			}
			op.Parameters = append(op.Parameters, p)
		}
	}
	for _, match := range pathParam.FindAllStringSubmatch(route.Path, -1) {
		if name := match[1]; !declared[name] {
			op.Parameters = append(op.Parameters, implicitPathParameter(name))
		}
	}

	if isDocumented(route.BodyType) {
		op.Parameters = append(op.Parameters, *spec.BodyParam("body", schemaFor(route.BodyType, definitions)).AsRequired())
	}

	success := route.RouteInfo.SuccessStatus
	if success == 0 {
		success = http.StatusOK
	}
	response := spec.NewResponse().WithDescription(http.StatusText(success))
	if isDocumented(route.ResponseType) {
		response = response.WithSchema(schemaFor(route.ResponseType, definitions))
	}
	op.Responses.StatusCodeResponses[success] = *response

	for _, status := range errorStatuses(route) {
		op.Responses.StatusCodeResponses[status] = *spec.NewResponse().
			WithDescription(http.StatusText(status)).
			WithSchema(spec.RefSchema("#/definitions/ErrorResponse"))
	}

	return op
}

func operationID(route handler.PendingRoute) string {
	parts := []string{strings.ToLower(route.Method)}
	for _, segment := range strings.Split(strings.Trim(route.Path, "/"), "/") {
		segment = strings.Trim(segment, "{}")
		if segment == "" {
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, "_")
}

// errorStatuses lists the failures a route can answer with.
func errorStatuses(route handler.PendingRoute) []int {
	statuses := []int{http.StatusInternalServerError, http.StatusServiceUnavailable}
	if strings.Contains(route.Path, "{") {
		statuses = append(statuses, http.StatusNotFound)
	}
	if isDocumented(route.ParamType) || isDocumented(route.BodyType) {
		statuses = append(statuses, http.StatusBadRequest)
	}
	if len(route.RouteInfo.Use) > 0 {
		statuses = append(statuses, http.StatusTooManyRequests)
	}
	statuses = append(statuses, http.StatusRequestTimeout, http.StatusGatewayTimeout)
	sort.Ints(statuses)
	return statuses
}

func isDocumented(t reflect.Type) bool {
	return t != nil && t != emptyStruct
}

func implicitPathParameter(name string) spec.Parameter {
	p := spec.PathParam(name).Typed("string", "")
	if name == "locale" {
		enum := make([]any, len(locale.Supported))
		for i, l := range locale.Supported {
			enum[i] = l.String()
		}
		p.WithEnum(enum...)
		p.WithDescription("Site locale")
	}
	return *p
}

// structParameters documents fields tagged param or query.
func structParameters(t reflect.Type) []spec.Parameter {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var params []spec.Parameter
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		var p *spec.Parameter
		if name := field.Tag.Get("param"); name != "" {
			p = spec.PathParam(name)
		} else if name := field.Tag.Get("query"); name != "" {
			p = spec.QueryParam(name)
			if isRequired(field) {
				p.AsRequired()
			}
		} else {
			continue
		}

		typ, format := primitiveType(field.Type)
		p.Typed(typ, format)
		if desc := field.Tag.Get("description"); desc != "" {
			p.WithDescription(desc)
		}
		params = append(params, *p)
	}
	return params
}

// schemaFor returns the schema of t, registering named structs as
// definitions and referencing them.
func schemaFor(t reflect.Type, definitions spec.Definitions) *spec.Schema {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == rawJSONType:
		return &spec.Schema{}
	case t == timeType:
		return spec.DateTimeProperty()
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		return spec.ArrayProperty(schemaFor(t.Elem(), definitions))
	case t.Kind() == reflect.Map:
		return spec.MapProperty(schemaFor(t.Elem(), definitions))
	case t.Kind() == reflect.Struct:
		name := t.Name()
		if name == "" {
			return structSchema(t, definitions)
		}
		if _, exists := definitions[name]; !exists {
			// Placeholder first so self-references terminate
			definitions[name] = spec.Schema{}
			definitions[name] = *structSchema(t, definitions)
		}
		return spec.RefSchema("#/definitions/" + name)
	default:
		typ, format := primitiveType(t)
		return &spec.Schema{SchemaProps: spec.SchemaProps{Type: []string{typ}, Format: format}}
	}
}

func structSchema(t reflect.Type, definitions spec.Definitions) *spec.Schema {
	schema := &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type:       []string{"object"},
			Properties: make(map[string]spec.Schema),
		},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]

		// Embedded structs without a name are flattened, as encoding/json does
		if field.Anonymous && name == "" && field.Type.Kind() == reflect.Struct {
			embedded := structSchema(field.Type, definitions)
			for propName, prop := range embedded.Properties {
				if _, exists := schema.Properties[propName]; !exists {
					schema.Properties[propName] = prop
				}
			}
			schema.Required = append(schema.Required, embedded.Required...)
			continue
		}
		if name == "" {
			name = field.Name
		}

		prop := *schemaFor(field.Type, definitions)
		addValidationConstraints(&prop, field)
		schema.Properties[name] = prop

		if isRequired(field) {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// addValidationConstraints maps validator rules onto the schema.
func addValidationConstraints(schema *spec.Schema, field reflect.StructField) {
	validateTag := field.Tag.Get("validate")
	if validateTag == "" || schema.Ref.String() != "" {
		return
	}

	isString := field.Type.Kind() == reflect.String
	for _, rule := range strings.Split(validateTag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(rule), "=")

		switch key {
		case "min", "max":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			switch {
			case isString && key == "min":
				schema.WithMinLength(n)
			case isString:
				schema.WithMaxLength(n)
			case key == "min":
				schema.WithMinimum(float64(n), false)
			default:
				schema.WithMaximum(float64(n), false)
			}
		case "email":
			schema.Format = "email"
		case "url":
			schema.Format = "uri"
		case "e164":
			schema.WithPattern(`^\+[1-9]\d{1,14}$`)
		case "oneof":
			var enum []any
			for _, v := range strings.Fields(value) {
				enum = append(enum, v)
			}
			schema.WithEnum(enum...)
		}
	}
}

func isRequired(field reflect.StructField) bool {
	for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
		if strings.TrimSpace(rule) == "required" {
			return true
		}
	}
	return false
}

func primitiveType(t reflect.Type) (typ, format string) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Uint, reflect.Uint8, reflect.Uint16:
		return "integer", ""
	case reflect.Int32, reflect.Uint32:
		return "integer", "int32"
	case reflect.Int64, reflect.Uint64:
		return "integer", "int64"
	case reflect.Float32:
		return "number", "float"
	case reflect.Float64:
		return "number", "double"
	case reflect.Bool:
		return "boolean", ""
	case reflect.String:
		return "string", ""
	default:
		return "object", ""
	}
}
