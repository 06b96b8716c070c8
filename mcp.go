// Package mcp runs a tool server over one of the supported transports.
//
// A server is built with the server package and handed to Serve together
// with a transport name:
//
//	srv := server.New(server.Info{Name: "stock", Version: "1.0.0"})
//	srv.Tool("get-stock-data").Handler(getStockData)
//
//	err := mcp.Serve(ctx, srv, mcp.TransportConfig{Kind: "stdio"},
//	    mcp.WithLogger(logger))
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-adapters/middleware"
	"github.com/felixgeelhaar/mcp-adapters/server"
	"github.com/felixgeelhaar/mcp-adapters/transport"
)

// Transport kinds accepted by TransportConfig.
const (
	TransportStdio     = "stdio"
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// TransportConfig selects and addresses a transport.
// A zero SessionIdle keeps the HTTP transport's default.
type TransportConfig struct {
	Kind        string
	Addr        string
	SessionIdle time.Duration
}

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []middleware.Middleware
	logger     middleware.Logger
	otel       []middleware.OTelOption
	stdio      []transport.StdioOption
}

// WithMiddleware appends middleware after the default stack.
func WithMiddleware(m ...middleware.Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger sets the logger used by the default middleware stack.
func WithLogger(l middleware.Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// WithOTel passes options to the tracing and metrics middleware.
func WithOTel(opts ...middleware.OTelOption) ServeOption {
	return func(o *serveOptions) {
		o.otel = append(o.otel, opts...)
	}
}

// WithStdio passes options to the stdio transport.
func WithStdio(opts ...transport.StdioOption) ServeOption {
	return func(o *serveOptions) {
		o.stdio = append(o.stdio, opts...)
	}
}

// NewHandler builds the request handler for srv with the default
// middleware stack followed by any extra middleware.
func NewHandler(srv *server.Server, opts ...ServeOption) *server.Handler {
	o := options(opts)
	mws := append(middleware.DefaultStack(o.logger, o.otel...), o.middleware...)
	return server.NewHandler(srv, mws...)
}

// NewTransport returns the transport named by cfg.
func NewTransport(cfg TransportConfig, opts ...ServeOption) (transport.Transport, error) {
	o := options(opts)
	switch cfg.Kind {
	case "", TransportStdio:
		return transport.NewStdio(o.stdio...), nil
	case TransportHTTP:
		var httpOpts []transport.HTTPOption
		if cfg.SessionIdle > 0 {
			httpOpts = append(httpOpts, transport.WithSessionIdleTimeout(cfg.SessionIdle))
		}
		return transport.NewHTTP(cfg.Addr, httpOpts...), nil
	case TransportWebSocket:
		return transport.NewWebSocket(cfg.Addr), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Kind)
	}
}

// Serve runs srv on the configured transport until ctx is canceled or the
// transport stops. Registration errors recorded on srv are reported before
// anything is served.
func Serve(ctx context.Context, srv *server.Server, cfg TransportConfig, opts ...ServeOption) error {
	if err := srv.Err(); err != nil {
		return fmt.Errorf("server %s: %w", srv.Info().Name, err)
	}
	t, err := NewTransport(cfg, opts...)
	if err != nil {
		return err
	}
	return t.Serve(ctx, NewHandler(srv, opts...))
}

func options(opts []ServeOption) *serveOptions {
	o := &serveOptions{logger: middleware.NopLogger{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
