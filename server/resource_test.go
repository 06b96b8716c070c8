package server

import (
	"context"
	"errors"
	"testing"
)

func TestResource_Match(t *testing.T) {
	srv := New(Info{Name: "test"})
	b := srv.Resource("stock://{symbol}/{interval}").Handler(func(ctx context.Context, uri string, params map[string]string) (*ResourceContent, error) {
		return &ResourceContent{}, nil
	})
	if b.Err() != nil {
		t.Fatalf("unexpected error: %v", b.Err())
	}
	r := srv.resources[0]

	tests := []struct {
		uri    string
		ok     bool
		params map[string]string
	}{
		{"stock://IBM/daily", true, map[string]string{"symbol": "IBM", "interval": "daily"}},
		{"stock://BRK.B/5min", true, map[string]string{"symbol": "BRK.B", "interval": "5min"}},
		{"stock://BRK%2FB/daily", true, map[string]string{"symbol": "BRK/B", "interval": "daily"}},
		{"stock://IBM", false, nil},
		{"stock://IBM/daily/extra", false, nil},
		{"question://1", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			params, ok := r.Match(tt.uri)
			if ok != tt.ok {
				t.Fatalf("Match() ok = %v, want %v", ok, tt.ok)
			}
			for k, v := range tt.params {
				if params[k] != v {
					t.Errorf("params[%s] = %q, want %q", k, params[k], v)
				}
			}
		})
	}
}

func TestResource_Read(t *testing.T) {
	srv := New(Info{Name: "test"})
	srv.Resource("question://{id}").
		Name("Question").
		Description("Question by id").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*ResourceContent, error) {
			if params["id"] == "0" {
				return nil, errors.New("Question ID 0 does not exist")
			}
			return &ResourceContent{Text: `{"id":` + params["id"] + `}`}, nil
		})
	r := srv.resources[0]

	content, err := r.Read(context.Background(), "question://2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.URI != "question://2" || content.MimeType != "application/json" || content.Text != `{"id":2}` {
		t.Errorf("content = %+v", content)
	}

	if _, err := r.Read(context.Background(), "question://0"); err == nil {
		t.Error("expected handler error")
	}
	if _, err := r.Read(context.Background(), "stock://IBM/daily"); err == nil {
		t.Error("expected template mismatch error")
	}

	info := r.Info()
	if !info.Templated || info.Name != "Question" || info.Description != "Question by id" {
		t.Errorf("Info() = %+v", info)
	}
}

func TestResource_StaticURI(t *testing.T) {
	srv := New(Info{Name: "test"})
	srv.Resource("quiz://stats").Handler(func(ctx context.Context, uri string, params map[string]string) (*ResourceContent, error) {
		return &ResourceContent{Text: "5"}, nil
	})

	r := srv.resources[0]
	if r.Info().Templated {
		t.Error("static URI should not be templated")
	}
	if _, ok := r.Match("quiz://stats"); !ok {
		t.Error("expected exact match")
	}
	if _, ok := r.Match("quiz://statsX"); ok {
		t.Error("match must be anchored")
	}
}

func TestResourceContent_Wire(t *testing.T) {
	c := &ResourceContent{URI: "stock://IBM/daily", MimeType: "text/plain", Text: "data"}
	w := c.Wire()
	if w.URI != c.URI || w.MimeType != c.MimeType || w.Text != c.Text || w.Blob != "" {
		t.Errorf("Wire() = %+v", w)
	}
}
