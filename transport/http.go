package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// DefaultSessionIdleTimeout bounds how long an HTTP session outlives its
// last request.
const DefaultSessionIdleTimeout = 30 * time.Minute

// HTTP serves JSON-RPC on POST /mcp. Sessions are keyed by the
// Mcp-Session-Id header; a request without one starts a new session and
// the id is returned in the response header.
type HTTP struct {
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	sessionIdle  time.Duration

	mu         sync.RWMutex
	listenAddr string
	server     *http.Server
}

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithReadTimeout sets the read timeout for HTTP requests.
func WithReadTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.readTimeout = d
	}
}

// WithWriteTimeout sets the write timeout for HTTP responses. The default
// of zero leaves slow grading calls unbounded.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.writeTimeout = d
	}
}

// WithSessionIdleTimeout sets how long a session may go without a
// request before it is evicted. Zero disables eviction.
func WithSessionIdleTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.sessionIdle = d
	}
}

// NewHTTP creates a new HTTP transport.
func NewHTTP(addr string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		addr:        addr,
		readTimeout: 30 * time.Second,
		sessionIdle: DefaultSessionIdleTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Addr returns the configured address.
func (h *HTTP) Addr() string {
	return h.addr
}

// ListenAddr returns the address actually bound, once serving.
func (h *HTTP) ListenAddr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listenAddr
}

// Serve listens on the configured address until ctx is canceled.
func (h *HTTP) Serve(ctx context.Context, handler Handler) error {
	listener, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := &http.Server{
		Handler:      h.Routes(handler),
		ReadTimeout:  h.readTimeout,
		WriteTimeout: h.writeTimeout,
	}
	h.mu.Lock()
	h.listenAddr = listener.Addr().String()
	h.server = srv
	h.mu.Unlock()

	if sweeper, ok := handler.(SessionSweeper); ok && h.sessionIdle > 0 {
		go sweepSessions(ctx, sweeper, h.sessionIdle)
	}
	return serveUntilDone(ctx, srv, listener)
}

// sweepSessions evicts idle sessions every half idle period until ctx ends.
func sweepSessions(ctx context.Context, sweeper SessionSweeper, maxIdle time.Duration) {
	interval := maxIdle / 2
	if interval <= 0 {
		interval = maxIdle
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweeper.SweepIdleSessions(maxIdle)
		}
	}
}

// Routes returns the router used by Serve.
func (h *HTTP) Routes(handler Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler)
	r.Post("/mcp", func(w http.ResponseWriter, req *http.Request) {
		h.handleMCP(w, req, handler)
	})
	r.Delete("/mcp", func(w http.ResponseWriter, req *http.Request) {
		if id := req.Header.Get(protocol.SessionHeader); id != "" {
			closeSession(handler, id)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func (h *HTTP) handleMCP(w http.ResponseWriter, r *http.Request, handler Handler) {
	sessionID := r.Header.Get(protocol.SessionHeader)
	if sessionID == "" {
		sessionID = newSessionID()
	}
	ctx := sessionContext(r.Context(), sessionID, "http")
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		ctx = protocol.SetRequestMeta(ctx, protocol.MetaRequestID, reqID)
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = json.RawMessage(`{`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(protocol.SessionHeader, sessionID)

	resp := serveMessage(ctx, handler, body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// serveUntilDone runs srv on listener and shuts it down when ctx ends.
func serveUntilDone(ctx context.Context, srv *http.Server, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
