// Package schema provides JSON Schema generation from Go types.
//
// Schemas are derived from the argument structs of tool handlers and
// published in tools/list:
//
//	type Args struct {
//	    Symbol   schema.StringOrList `json:"symbol" jsonschema:"required,description=Ticker symbol"`
//	    Interval string              `json:"interval,omitempty" jsonschema:"enum=1min|5min|60min,default=5min"`
//	    Count    int                 `json:"count,omitempty" jsonschema:"minimum=1,maximum=10"`
//	}
//
//	s, err := schema.Generate(Args{})
//
// # Struct Tags
//
// The jsonschema tag accepts comma-separated entries: required, enum=a|b,
// default=v, minimum=n, maximum=n and description=text. description
// consumes the rest of the tag, so it must come last when it contains
// commas. json:"-" excludes a field.
//
// Types implementing Describer supply their own schema. StringOrList and
// NumberOrList use it to accept either a bare value or a list.
//
// # Validation
//
// Schema.Validate checks raw arguments and returns ValidationErrors.
// Schema.ApplyDefaults fills absent properties from their declared defaults.
package schema
