package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

func TestRecover(t *testing.T) {
	h := Recover()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		panic("nil map write")
	})

	resp, err := h(context.Background(), &protocol.Request{Method: protocol.MethodToolsCall})
	if resp != nil {
		t.Errorf("resp = %v, want nil", resp)
	}
	var protoErr *protocol.Error
	if !errors.As(err, &protoErr) {
		t.Fatalf("err = %v, want *protocol.Error", err)
	}
	if protoErr.Code != protocol.CodeInternalError {
		t.Errorf("Code = %d, want %d", protoErr.Code, protocol.CodeInternalError)
	}
	if !strings.Contains(protoErr.Message, "nil map write") {
		t.Errorf("Message = %q", protoErr.Message)
	}
}

func TestRecover_PassThrough(t *testing.T) {
	want := protocol.NewResponse(nil, "ok")
	h := Recover()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return want, nil
	})
	got, err := h(context.Background(), &protocol.Request{})
	if err != nil || got != want {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestRecoverWithHandler(t *testing.T) {
	var seen any
	h := RecoverWithHandler(func(ctx context.Context, req *protocol.Request, v any) (*protocol.Response, error) {
		seen = v
		return protocol.NewResponse(req.ID, "recovered"), nil
	})(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		panic(errors.New("boom"))
	})

	resp, err := h(context.Background(), &protocol.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Result != "recovered" {
		t.Errorf("Result = %v", resp.Result)
	}
	if e, ok := seen.(error); !ok || e.Error() != "boom" {
		t.Errorf("panic value = %v", seen)
	}
}
