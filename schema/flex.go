package schema

import (
	"encoding/json"
	"fmt"
)

// StringOrList is a string argument that callers may also send as a list;
// only the first element of a list is kept.
type StringOrList string

// JSONSchema implements Describer.
func (StringOrList) JSONSchema() *Schema {
	return &Schema{AnyOf: []*Schema{
		{Type: typeString},
		{Type: typeArray, Items: &Schema{Type: typeString}},
	}}
}

// UnmarshalJSON accepts "x" and ["x", ...].
func (v *StringOrList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringOrList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*v = ""
	if len(list) > 0 {
		*v = StringOrList(list[0])
	}
	return nil
}

func (v StringOrList) String() string { return string(v) }

// NumberOrList is a numeric argument that callers may also send as a list;
// only the first element of a list is kept.
type NumberOrList float64

// JSONSchema implements Describer.
func (NumberOrList) JSONSchema() *Schema {
	return &Schema{AnyOf: []*Schema{
		{Type: typeNumber},
		{Type: typeArray, Items: &Schema{Type: typeNumber}},
	}}
}

// UnmarshalJSON accepts 5 and [5, ...].
func (v *NumberOrList) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = NumberOrList(f)
		return nil
	}
	var list []float64
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected number or list of numbers: %w", err)
	}
	*v = 0
	if len(list) > 0 {
		*v = NumberOrList(list[0])
	}
	return nil
}

func (v NumberOrList) Float64() float64 { return float64(v) }
