package client

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
	"github.com/felixgeelhaar/mcp-adapters/transport"
)

// InProcess calls a transport.Handler directly, all requests in one
// session.
type InProcess struct {
	handler   transport.Handler
	sessionID string
}

// NewInProcess returns a transport bound to handler under sessionID.
func NewInProcess(handler transport.Handler, sessionID string) *InProcess {
	return &InProcess{handler: handler, sessionID: sessionID}
}

// Send hands req to the handler. Handler errors become error responses the
// way a network transport would send them.
func (t *InProcess) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	ctx = protocol.WithSessionID(ctx, t.sessionID)
	resp, err := t.handler.HandleRequest(ctx, req)
	if req.IsNotification() {
		return nil, nil
	}
	if err != nil {
		var protoErr *protocol.Error
		if !errors.As(err, &protoErr) {
			protoErr = protocol.NewInternalError(err.Error())
		}
		return protocol.NewErrorResponse(req.ID, protoErr), nil
	}
	return resp, nil
}

// Close releases the session if the handler tracks sessions.
func (t *InProcess) Close() error {
	if c, ok := t.handler.(transport.SessionCloser); ok {
		c.CloseSession(t.sessionID)
	}
	return nil
}
