package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Schema type constants.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
)

// ValidationError describes one argument that does not match its schema.
type ValidationError struct {
	Path    string // dotted path of the offending field, e.g. "symbol"
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range e {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks raw JSON against the schema and returns ValidationErrors
// when it does not conform. Empty input is treated as an empty object.
func (s *Schema) Validate(data json.RawMessage) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %s", err)}
	}

	var errs ValidationErrors
	s.validate("", value, &errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateValue validates a Go value against a schema.
func (s *Schema) ValidateValue(value any) error {
	var errs ValidationErrors
	s.validate("", value, &errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Schema) validate(path string, value any, errs *ValidationErrors) {
	if value == nil {
		return
	}

	if len(s.AnyOf) > 0 {
		s.validateAnyOf(path, value, errs)
		return
	}

	switch s.Type {
	case typeObject:
		s.validateObject(path, value, errs)
	case typeArray:
		s.validateArray(path, value, errs)
	case typeString:
		s.validateString(path, value, errs)
	case typeInteger:
		s.validateInteger(path, value, errs)
	case typeNumber:
		s.validateNumber(path, value, errs)
	case typeBoolean:
		s.validateBoolean(path, value, errs)
	}
}

func (s *Schema) validateObject(path string, value any, errs *ValidationErrors) {
	obj, ok := value.(map[string]any)
	if !ok {
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("expected object, got %T", value),
		})
		return
	}

	// Check required fields
	for _, req := range s.Required {
		if _, exists := obj[req]; !exists {
			fieldPath := joinPath(path, req)
			*errs = append(*errs, &ValidationError{
				Path:    fieldPath,
				Message: "required field is missing",
			})
		}
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if val, exists := obj[name]; exists {
			s.Properties[name].validate(joinPath(path, name), val, errs)
		}
	}
}

func (s *Schema) validateAnyOf(path string, value any, errs *ValidationErrors) {
	for _, branch := range s.AnyOf {
		var branchErrs ValidationErrors
		branch.validate(path, value, &branchErrs)
		if len(branchErrs) == 0 {
			return
		}
	}
	*errs = append(*errs, &ValidationError{
		Path:    path,
		Message: fmt.Sprintf("value %v matches none of the accepted shapes", value),
	})
}

func (s *Schema) validateArray(path string, value any, errs *ValidationErrors) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("expected array, got %T", value),
		})
		return
	}

	if s.Items == nil {
		return
	}

	for i := 0; i < rv.Len(); i++ {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		s.Items.validate(itemPath, rv.Index(i).Interface(), errs)
	}
}

func (s *Schema) validateString(path string, value any, errs *ValidationErrors) {
	str, ok := value.(string)
	if !ok {
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("expected string, got %T", value),
		})
		return
	}

	s.validateEnum(path, str, errs)
}

func (s *Schema) validateEnum(path string, value any, errs *ValidationErrors) {
	if len(s.Enum) == 0 {
		return
	}
	for _, e := range s.Enum {
		if e == value {
			return
		}
	}
	*errs = append(*errs, &ValidationError{
		Path:    path,
		Message: fmt.Sprintf("value must be one of: %v", s.Enum),
	})
}

func (s *Schema) validateInteger(path string, value any, errs *ValidationErrors) {
	var num float64
	switch v := value.(type) {
	case float64:
		num = v
		// Check if it's actually an integer
		if num != float64(int64(num)) {
			*errs = append(*errs, &ValidationError{
				Path:    path,
				Message: "expected integer, got decimal number",
			})
			return
		}
	case int:
		num = float64(v)
	case int64:
		num = float64(v)
	default:
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("expected integer, got %T", value),
		})
		return
	}

	s.validateNumericConstraints(path, num, errs)
}

func (s *Schema) validateNumber(path string, value any, errs *ValidationErrors) {
	var num float64
	switch v := value.(type) {
	case float64:
		num = v
	case float32:
		num = float64(v)
	case int:
		num = float64(v)
	case int64:
		num = float64(v)
	default:
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("expected number, got %T", value),
		})
		return
	}

	s.validateNumericConstraints(path, num, errs)
}

func (s *Schema) validateNumericConstraints(path string, num float64, errs *ValidationErrors) {
	s.validateEnum(path, num, errs)

	if s.Minimum != nil && num < *s.Minimum {
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("value %v is less than minimum %v", num, *s.Minimum),
		})
	}

	if s.Maximum != nil && num > *s.Maximum {
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("value %v is greater than maximum %v", num, *s.Maximum),
		})
	}
}

func (s *Schema) validateBoolean(path string, value any, errs *ValidationErrors) {
	if _, ok := value.(bool); !ok {
		*errs = append(*errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("expected boolean, got %T", value),
		})
	}
}

// ApplyDefaults returns data with every absent or null top-level property
// that declares a default filled in. An empty list counts as absent for
// properties that are not themselves lists. Non-object input is returned
// unchanged.
func (s *Schema) ApplyDefaults(data json.RawMessage) (json.RawMessage, error) {
	if s.Type != typeObject || len(s.Properties) == 0 {
		return data, nil
	}
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return data, nil
	}

	changed := false
	for name, prop := range s.Properties {
		if prop.Default == nil {
			continue
		}
		if v, ok := obj[name]; !ok || v == nil || (prop.Type != typeArray && isEmptyList(v)) {
			obj[name] = prop.Default
			changed = true
		}
	}
	if !changed {
		return data, nil
	}
	return json.Marshal(obj)
}

// isEmptyList reports whether v decoded from [].
func isEmptyList(v any) bool {
	list, ok := v.([]any)
	return ok && len(list) == 0
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
