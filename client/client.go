// Package client is a minimal MCP client used to drive tool servers from
// tests and tooling.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
	"github.com/felixgeelhaar/mcp-adapters/server"
)

// Transport delivers requests to a server.
type Transport interface {
	// Send sends a request and waits for its response. Notifications
	// return a nil response.
	Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
	Close() error
}

// Client speaks MCP to one server.
type Client struct {
	transport Transport
	opts      clientOptions

	mu         sync.RWMutex
	serverInfo *ServerInfo
	requestID  atomic.Int64
}

// ServerInfo is what the server reported during initialize.
type ServerInfo struct {
	Name            string
	Version         string
	ProtocolVersion string
	Tools           bool
	Resources       bool
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout    time.Duration
	clientName string
	clientVer  string
}

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithClientInfo sets the name and version sent on initialize.
func WithClientInfo(name, version string) Option {
	return func(o *clientOptions) {
		o.clientName = name
		o.clientVer = version
	}
}

// New creates a client over transport.
func New(transport Transport, opts ...Option) *Client {
	options := clientOptions{
		timeout:    30 * time.Second,
		clientName: "mcp-adapters-client",
		clientVer:  "1.0.0",
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Client{transport: transport, opts: options}
}

// Initialize performs the handshake and sends notifications/initialized.
func (c *Client) Initialize(ctx context.Context) (*ServerInfo, error) {
	params := map[string]any{
		"protocolVersion": protocol.MCPVersion,
		"clientInfo": map[string]any{
			"name":    c.opts.clientName,
			"version": c.opts.clientVer,
		},
		"capabilities": map[string]any{},
	}

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
		Capabilities map[string]json.RawMessage `json:"capabilities"`
	}
	if err := c.call(ctx, protocol.MethodInitialize, params, &result); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	_, tools := result.Capabilities["tools"]
	_, resources := result.Capabilities["resources"]
	info := &ServerInfo{
		Name:            result.ServerInfo.Name,
		Version:         result.ServerInfo.Version,
		ProtocolVersion: result.ProtocolVersion,
		Tools:           tools,
		Resources:       resources,
	}

	c.mu.Lock()
	c.serverInfo = info
	c.mu.Unlock()

	if err := c.notify(ctx, protocol.MethodInitialized); err != nil {
		return nil, fmt.Errorf("initialized: %w", err)
	}
	return info, nil
}

// ListTools returns the tools the server exposes.
func (c *Client) ListTools(ctx context.Context) ([]server.ToolInfo, error) {
	var result struct {
		Tools []server.ToolInfo `json:"tools"`
	}
	if err := c.call(ctx, protocol.MethodToolsList, nil, &result); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a tool. A tool-level failure is reported through
// IsError on the result, not as an error.
func (c *Client) CallTool(ctx context.Context, name string, arguments any) (*protocol.CallToolResult, error) {
	params := map[string]any{"name": name}
	if arguments != nil {
		params["arguments"] = arguments
	}

	var result protocol.CallToolResult
	if err := c.call(ctx, protocol.MethodToolsCall, params, &result); err != nil {
		return nil, fmt.Errorf("call tool %s: %w", name, err)
	}
	return &result, nil
}

// Resource is an entry of resources/list or resources/templates/list.
type Resource struct {
	URI         string `json:"uri,omitempty"`
	URITemplate string `json:"uriTemplate,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResources returns the fixed-URI resources.
func (c *Client) ListResources(ctx context.Context) ([]Resource, error) {
	var result struct {
		Resources []Resource `json:"resources"`
	}
	if err := c.call(ctx, protocol.MethodResourcesList, nil, &result); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return result.Resources, nil
}

// ListResourceTemplates returns the templated resources.
func (c *Client) ListResourceTemplates(ctx context.Context) ([]Resource, error) {
	var result struct {
		ResourceTemplates []Resource `json:"resourceTemplates"`
	}
	if err := c.call(ctx, protocol.MethodResourcesTemplatesList, nil, &result); err != nil {
		return nil, fmt.Errorf("list resource templates: %w", err)
	}
	return result.ResourceTemplates, nil
}

// ReadResource reads the resource at uri.
func (c *Client) ReadResource(ctx context.Context, uri string) ([]protocol.ResourceContents, error) {
	var result protocol.ReadResourceResult
	if err := c.call(ctx, protocol.MethodResourcesRead, protocol.ReadResourceParams{URI: uri}, &result); err != nil {
		return nil, fmt.Errorf("read resource %s: %w", uri, err)
	}
	return result.Contents, nil
}

// Ping checks the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, protocol.MethodPing, nil, nil)
}

// ServerInfo returns what the server reported on Initialize.
func (c *Client) ServerInfo() *ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// Close closes the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// call sends a request and decodes its result into out. JSON-RPC errors
// come back as *protocol.Error.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	idRaw, _ := json.Marshal(c.requestID.Add(1))
	req, err := newRequest(idRaw, method, params)
	if err != nil {
		return err
	}

	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil {
		return fmt.Errorf("no response to %s", method)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil {
		return nil
	}

	// Result may be a decoded map or the server's own typed value.
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func (c *Client) notify(ctx context.Context, method string) error {
	req, err := newRequest(nil, method, nil)
	if err != nil {
		return err
	}
	_, err = c.transport.Send(ctx, req)
	return err
}

func newRequest(id json.RawMessage, method string, params any) (*protocol.Request, error) {
	req := &protocol.Request{JSONRPC: protocol.JSONRPCVersion, ID: id, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		req.Params = raw
	}
	return req, nil
}
