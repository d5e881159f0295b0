package util

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Schema is a flat JSON-object schema: property name to JSON type, plus the
// required property names.
type Schema struct {
	Properties map[string]string
	Required   []string
}

// SchemaFor derives a Schema from the exported fields of a struct value or
// pointer. Field names follow json tags. Fields without omitempty and that
// are not pointers are required.
func SchemaFor(v any) Schema {
	s := Schema{Properties: map[string]string{}}
	t := reflect.TypeOf(v)
	if t == nil {
		return s
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return s
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := field.Name
		if parts := strings.Split(tag, ","); parts[0] != "" {
			name = parts[0]
		}
		s.Properties[name] = jsonType(field.Type)
		if !hasOmitEmpty(tag) && field.Type.Kind() != reflect.Ptr {
			s.Required = append(s.Required, name)
		}
	}
	sort.Strings(s.Required)
	return s
}

// Validate checks params, typically a decoded JSON object, against s. Required
// string properties must also be non-blank. Unknown properties are allowed.
func (s Schema) Validate(params map[string]any) error {
	for _, name := range s.Required {
		v, ok := params[name]
		if !ok || v == nil {
			return &ValidationError{Field: name, Message: "required field is missing"}
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			return &ValidationError{Field: name, Message: "must not be empty"}
		}
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want, known := s.Properties[name]
		if !known {
			continue
		}
		if v := params[name]; !isValidType(v, want) {
			return &ValidationError{
				Field:   name,
				Value:   v,
				Message: fmt.Sprintf("expected type %s, got %T", want, v),
			}
		}
	}
	return nil
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonType(t.Elem())
	default:
		return "string"
	}
}

func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}

// isValidType accepts values as produced by encoding/json into any.
func isValidType(value any, want string) bool {
	if value == nil {
		return true
	}
	switch want {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	case "number":
		_, ok := value.(float64)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
