package transport

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// Handler processes incoming requests. A nil response means nothing is
// sent back.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// SessionCloser is implemented by handlers that keep per-session state.
// Transports call it when a session's stream or connection ends.
type SessionCloser interface {
	CloseSession(id string)
}

// SessionSweeper is implemented by handlers that can evict idle sessions.
// Transports whose sessions have no connection lifetime call it
// periodically.
type SessionSweeper interface {
	SweepIdleSessions(maxIdle time.Duration) int
}

// Transport is a communication layer for a Handler.
type Transport interface {
	// Serve blocks until ctx is canceled, the input ends, or an error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr describes where the transport listens.
	Addr() string
}

// newSessionID returns a fresh session id.
func newSessionID() string {
	return uuid.NewString()
}

// sessionContext tags ctx with the session id and transport name.
func sessionContext(ctx context.Context, sessionID, transport string) context.Context {
	ctx = protocol.WithSessionID(ctx, sessionID)
	return protocol.SetRequestMeta(ctx, protocol.MetaTransport, transport)
}

func closeSession(handler Handler, id string) {
	if c, ok := handler.(SessionCloser); ok {
		c.CloseSession(id)
	}
}

// serveMessage decodes one JSON-RPC message, runs it through handler and
// returns the response to send, or nil when none is due.
func serveMessage(ctx context.Context, handler Handler, data []byte) *protocol.Response {
	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return protocol.NewErrorResponse(nil, protocol.NewParseError(err.Error()))
	}

	resp, err := handler.HandleRequest(ctx, &req)
	if req.IsNotification() {
		return nil
	}
	if err != nil {
		var protoErr *protocol.Error
		if !errors.As(err, &protoErr) {
			protoErr = protocol.NewInternalError(err.Error())
		}
		return protocol.NewErrorResponse(req.ID, protoErr)
	}
	return resp
}
