package schema

import (
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema used to describe tool arguments.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Description string             `json:"description,omitempty"`
	Default     any                `json:"default,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	AnyOf       []*Schema          `json:"anyOf,omitempty"`
}

// Describer is implemented by argument types that provide their own schema
// instead of the one derived from their Go kind.
type Describer interface {
	JSONSchema() *Schema
}

var describerType = reflect.TypeOf((*Describer)(nil)).Elem()

// Generate creates a JSON Schema from a Go value.
func Generate(v any) (*Schema, error) {
	return generateFromType(reflect.TypeOf(v))
}

// GenerateFromType creates a JSON Schema from a reflect.Type.
func GenerateFromType(t reflect.Type) (*Schema, error) {
	return generateFromType(t)
}

func generateFromType(t reflect.Type) (*Schema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Implements(describerType) {
		return reflect.Zero(t).Interface().(Describer).JSONSchema(), nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return generateStructSchema(t)
	case reflect.String:
		return &Schema{Type: typeString}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: typeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: typeNumber}, nil
	case reflect.Bool:
		return &Schema{Type: typeBoolean}, nil
	case reflect.Slice, reflect.Array:
		items, err := generateFromType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: typeArray, Items: items}, nil
	case reflect.Map:
		return &Schema{Type: typeObject}, nil
	default:
		return &Schema{}, nil
	}
}

func generateStructSchema(t reflect.Type) (*Schema, error) {
	s := &Schema{
		Type:       typeObject,
		Properties: make(map[string]*Schema),
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
		name := field.Name
		if n, _, _ := strings.Cut(jsonTag, ","); n != "" {
			name = n
		}

		fieldSchema, err := generateFromType(field.Type)
		if err != nil {
			return nil, err
		}
		if parseJSONSchemaTag(field.Tag.Get("jsonschema"), fieldSchema) {
			s.Required = append(s.Required, name)
		}
		s.Properties[name] = fieldSchema
	}

	return s, nil
}

// parseJSONSchemaTag applies a jsonschema struct tag to s and reports
// whether the field is required. Recognized entries are required,
// enum=a|b, default=v, minimum=n, maximum=n and description=text.
// description consumes the remainder of the tag so it may contain commas.
func parseJSONSchemaTag(tag string, s *Schema) bool {
	required := false
	for tag != "" {
		var part string
		if strings.HasPrefix(strings.TrimSpace(tag), "description=") {
			part, tag = strings.TrimSpace(tag), ""
		} else {
			part, tag, _ = strings.Cut(tag, ",")
			part = strings.TrimSpace(part)
		}

		key, value, _ := strings.Cut(part, "=")
		switch key {
		case "required":
			required = true
		case "description":
			s.Description = value
		case "enum":
			for _, v := range strings.Split(value, "|") {
				s.Enum = append(s.Enum, parseLiteral(v, s.Type))
			}
		case "default":
			s.Default = parseLiteral(value, s.Type)
		case "minimum":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				s.Minimum = &f
			}
		case "maximum":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				s.Maximum = &f
			}
		}
	}
	return required
}

// parseLiteral converts a tag literal to the JSON value matching typ.
// Untyped schemas (anyOf) take the first interpretation that parses.
func parseLiteral(v, typ string) any {
	switch typ {
	case typeString:
		return v
	case typeInteger, typeNumber:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return v
	case typeBoolean:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
