package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// RequestID returns middleware that tags each request with a UUID, unless
// the transport already supplied one in the request metadata.
func RequestID() Middleware {
	return RequestIDWithGenerator(uuid.NewString)
}

// RequestIDWithGenerator is RequestID with a custom id source.
func RequestIDWithGenerator(generate func() string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, generate())
			}
			return next(ctx, req)
		}
	}
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return protocol.GetRequestMeta(ctx, protocol.MetaRequestID)
}

// ContextWithRequestID returns ctx tagged with id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return protocol.SetRequestMeta(ctx, protocol.MetaRequestID, id)
}
