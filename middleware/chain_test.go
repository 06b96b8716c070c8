package middleware

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := Chain(mark("first"), mark("second"))(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		order = append(order, "handler")
		return nil, nil
	})
	_, _ = h(context.Background(), &protocol.Request{Method: "ping"})

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestChain_Empty(t *testing.T) {
	called := false
	h := Chain()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		called = true
		return nil, nil
	})
	_, _ = h(context.Background(), &protocol.Request{})
	if !called {
		t.Error("handler was not called")
	}
}

func TestDefaultStack(t *testing.T) {
	if got := len(DefaultStack(NopLogger{})); got != 4 {
		t.Errorf("len(DefaultStack) = %d, want 4", got)
	}
}
