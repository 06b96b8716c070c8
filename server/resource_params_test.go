package server

import (
	"strings"
	"testing"
)

func TestExtractParams(t *testing.T) {
	type stockParams struct {
		Symbol   string `uri:"symbol"`
		Interval string `json:"interval,omitempty"`
	}
	type questionParams struct {
		ID int `uri:"id"`
	}

	t.Run("string fields", func(t *testing.T) {
		p, err := ExtractParams[stockParams](map[string]string{"symbol": "IBM", "interval": "daily"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Symbol != "IBM" || p.Interval != "daily" {
			t.Errorf("got %+v", p)
		}
	})

	t.Run("int field", func(t *testing.T) {
		p, err := ExtractParams[questionParams](map[string]string{"id": "3"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != 3 {
			t.Errorf("ID = %d, want 3", p.ID)
		}
	})

	t.Run("missing params keep zero values", func(t *testing.T) {
		p, err := ExtractParams[stockParams](map[string]string{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Symbol != "" {
			t.Errorf("Symbol = %q, want empty", p.Symbol)
		}
	})

	t.Run("other kinds", func(t *testing.T) {
		type params struct {
			Score  float64 `uri:"score"`
			Active bool    `uri:"active"`
			Count  uint    `uri:"count"`
		}
		p, err := ExtractParams[params](map[string]string{"score": "1.5", "active": "true", "count": "7"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Score != 1.5 || !p.Active || p.Count != 7 {
			t.Errorf("got %+v", p)
		}
	})

	t.Run("invalid int", func(t *testing.T) {
		_, err := ExtractParams[questionParams](map[string]string{"id": "abc"})
		if err == nil || !strings.Contains(err.Error(), "field ID") {
			t.Errorf("err = %v, want field ID error", err)
		}
	})

	t.Run("non-struct", func(t *testing.T) {
		if _, err := ExtractParams[string](map[string]string{}); err == nil {
			t.Error("expected error for non-struct type")
		}
	})
}
