package middleware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// PanicHandler turns a recovered panic into a response.
type PanicHandler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)

// Recover returns middleware that converts handler panics into internal
// errors so that one faulty tool cannot take the server down.
func Recover() Middleware {
	return RecoverWithHandler(func(_ context.Context, _ *protocol.Request, v any) (*protocol.Response, error) {
		return nil, protocol.NewInternalError(fmt.Sprintf("panic: %v", v))
	})
}

// RecoverWithHandler returns middleware that hands recovered panics to handler.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (resp *protocol.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = handler(ctx, req, r)
				}
			}()
			return next(ctx, req)
		}
	}
}
