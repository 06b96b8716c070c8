package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/mcp-adapters/middleware"
	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// Handler dispatches JSON-RPC requests to a Server. It satisfies the
// transport.Handler interface.
type Handler struct {
	srv  *Server
	next middleware.HandlerFunc
}

// NewHandler wraps srv with the given middleware, outermost first.
func NewHandler(srv *Server, mws ...middleware.Middleware) *Handler {
	h := &Handler{srv: srv}
	h.next = middleware.Chain(mws...)(h.dispatch)
	return h
}

// HandleRequest resolves the caller's session and runs the middleware
// chain. Notifications produce a nil response.
func (h *Handler) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	session := h.srv.sessions.Get(protocol.SessionIDFromContext(ctx))
	ctx = ContextWithSession(ctx, session)
	return h.next(ctx, req)
}

// CloseSession drops the state held for a session once its transport
// stream ends.
func (h *Handler) CloseSession(id string) {
	h.srv.sessions.Close(id)
}

// SweepIdleSessions evicts sessions idle for at least maxIdle.
func (h *Handler) SweepIdleSessions(maxIdle time.Duration) int {
	return h.srv.sessions.SweepIdle(maxIdle)
}

func (h *Handler) dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if req.JSONRPC != protocol.JSONRPCVersion {
		return nil, protocol.NewInvalidRequest("jsonrpc must be \"2.0\"")
	}
	if req.IsNotification() || strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}

	switch req.Method {
	case protocol.MethodInitialize:
		return h.initialize(req)
	case protocol.MethodPing:
		return protocol.NewResponse(req.ID, struct{}{}), nil
	case protocol.MethodToolsList:
		return protocol.NewResponse(req.ID, map[string]any{"tools": h.srv.Tools()}), nil
	case protocol.MethodToolsCall:
		return h.callTool(ctx, req)
	case protocol.MethodResourcesList:
		return h.listResources(req, false)
	case protocol.MethodResourcesTemplatesList:
		return h.listResources(req, true)
	case protocol.MethodResourcesRead:
		return h.readResource(ctx, req)
	default:
		return nil, protocol.NewMethodNotFound(req.Method)
	}
}

func (h *Handler) initialize(req *protocol.Request) (*protocol.Response, error) {
	manifest := h.srv.Manifest()

	capabilities := make(map[string]any)
	if len(h.srv.Tools()) > 0 {
		capabilities["tools"] = map[string]any{}
	}
	if len(h.srv.Resources()) > 0 {
		capabilities["resources"] = map[string]any{}
	}

	return protocol.NewResponse(req.ID, map[string]any{
		"protocolVersion": manifest.ProtocolVersion,
		"serverInfo": map[string]any{
			"name":    manifest.Name,
			"version": manifest.Version,
		},
		"capabilities": capabilities,
	}), nil
}

func (h *Handler) callTool(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params protocol.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	tool, ok := h.srv.GetTool(params.Name)
	if !ok {
		return nil, protocol.NewInvalidParams("unknown tool: " + params.Name)
	}

	result, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		return nil, err
	}
	return protocol.NewResponse(req.ID, result.Wire()), nil
}

func (h *Handler) listResources(req *protocol.Request, templated bool) (*protocol.Response, error) {
	items := make([]map[string]any, 0)
	for _, r := range h.srv.Resources() {
		if r.Templated != templated {
			continue
		}
		key := "uri"
		if templated {
			key = "uriTemplate"
		}
		item := map[string]any{key: r.URITemplate, "name": r.Name}
		if r.Description != "" {
			item["description"] = r.Description
		}
		if r.MimeType != "" {
			item["mimeType"] = r.MimeType
		}
		items = append(items, item)
	}

	field := "resources"
	if templated {
		field = "resourceTemplates"
	}
	return protocol.NewResponse(req.ID, map[string]any{field: items}), nil
}

func (h *Handler) readResource(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params protocol.ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	resource, _, ok := h.srv.FindResourceForURI(params.URI)
	if !ok {
		return nil, protocol.NewNotFound("resource not found: " + params.URI)
	}

	content, err := resource.Read(ctx, params.URI)
	if err != nil {
		var protoErr *protocol.Error
		if errors.As(err, &protoErr) {
			return nil, protoErr
		}
		return nil, protocol.NewInternalError(err.Error())
	}

	return protocol.NewResponse(req.ID, protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{content.Wire()},
	}), nil
}
