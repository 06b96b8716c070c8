package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func mustGenerate(t *testing.T, v any) *Schema {
	t.Helper()
	s, err := Generate(v)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return s
}

func TestSchema_Validate(t *testing.T) {
	s := mustGenerate(t, stockArgs{})

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "minimal", input: `{"symbol":"IBM"}`},
		{name: "list symbol", input: `{"symbol":["IBM"],"threshold":[2]}`},
		{name: "null optional", input: `{"symbol":"IBM","interval":null}`},
		{name: "missing required", input: `{}`, wantErr: "symbol: required field is missing"},
		{name: "empty params", input: ``, wantErr: "symbol: required field is missing"},
		{name: "bad enum", input: `{"symbol":"IBM","interval":"2min"}`, wantErr: "interval: value must be one of"},
		{name: "wrong type", input: `{"symbol":"IBM","showImage":"yes"}`, wantErr: "showImage: expected boolean"},
		{name: "anyOf mismatch", input: `{"symbol":7}`, wantErr: "symbol: value 7 matches none"},
		{name: "below minimum", input: `{"symbol":"IBM","count":0}`, wantErr: "count: value 0 is less than minimum 1"},
		{name: "decimal integer", input: `{"symbol":"IBM","count":1.5}`, wantErr: "count: expected integer"},
		{name: "not an object", input: `[1]`, wantErr: "expected object"},
		{name: "invalid json", input: `{`, wantErr: "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(json.RawMessage(tt.input))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSchema_ValidateNumericEnum(t *testing.T) {
	type input struct {
		Level int `json:"level" jsonschema:"enum=1|2|3"`
	}
	s := mustGenerate(t, input{})
	if err := s.Validate(json.RawMessage(`{"level":2}`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := s.Validate(json.RawMessage(`{"level":4}`)); err == nil {
		t.Error("expected enum error")
	}
}

func TestSchema_ApplyDefaults(t *testing.T) {
	s := mustGenerate(t, stockArgs{})

	out, err := s.ApplyDefaults(json.RawMessage(`{"symbol":"IBM","interval":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got stockArgs
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Interval != "5min" || got.Threshold != 5 || !got.ShowImage {
		t.Errorf("defaults not applied: %+v", got)
	}

	out, err = s.ApplyDefaults(json.RawMessage(`{"symbol":"IBM","interval":"60min","threshold":1,"showImage":false}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got = stockArgs{}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Interval != "60min" || got.Threshold != 1 || got.ShowImage {
		t.Errorf("explicit values overwritten: %+v", got)
	}

	out, err = s.ApplyDefaults(json.RawMessage(`{"symbol":"IBM","threshold":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got = stockArgs{}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Threshold != 5 {
		t.Errorf("empty threshold list = %v, want default 5", got.Threshold)
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "" {
		t.Error("empty ValidationErrors should render empty")
	}

	errs = ValidationErrors{{Path: "a", Message: "bad"}, {Path: "b", Message: "worse"}}
	want := "validation failed:\n  - a: bad\n  - b: worse"
	if errs.Error() != want {
		t.Errorf("Error() = %q, want %q", errs.Error(), want)
	}

	var target ValidationErrors
	if !errors.As(error(errs), &target) {
		t.Error("errors.As should match ValidationErrors")
	}
}
