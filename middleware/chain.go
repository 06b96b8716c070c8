package middleware

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// HandlerFunc is the signature for request handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware so that Chain(m1, m2)(h) runs m1, then m2,
// then h.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// toolName returns the tool targeted by a tools/call request, or "".
func toolName(req *protocol.Request) string {
	if req.Method != protocol.MethodToolsCall {
		return ""
	}
	var params protocol.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ""
	}
	return params.Name
}

// toolFailed reports whether resp carries an isError tool result.
func toolFailed(resp *protocol.Response) bool {
	if resp == nil {
		return false
	}
	switch r := resp.Result.(type) {
	case protocol.CallToolResult:
		return r.IsError
	case *protocol.CallToolResult:
		return r != nil && r.IsError
	}
	return false
}
