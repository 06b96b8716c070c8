package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	mcp "github.com/felixgeelhaar/mcp-adapters"
	"github.com/felixgeelhaar/mcp-adapters/client"
	"github.com/felixgeelhaar/mcp-adapters/server"
	"github.com/felixgeelhaar/mcp-adapters/transport"
)

// serveStdio runs srv over a piped stdio transport with the default
// middleware stack and returns an initialized client.
func serveStdio(t *testing.T, srv *server.Server, opts ...mcp.ServeOption) *client.Client {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	opts = append(opts, mcp.WithStdio(transport.WithStdin(reqR), transport.WithStdout(respW)))
	go func() {
		served <- mcp.Serve(ctx, srv, mcp.TransportConfig{Kind: mcp.TransportStdio}, opts...)
		_ = respW.Close()
	}()

	c := client.New(client.NewStreamTransport(respR, reqW))
	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		require.NoError(t, <-served)
	})

	_, err := c.Initialize(context.Background())
	require.NoError(t, err)
	return c
}

// chatLLM is a chat-completions endpoint that replies with reply and
// counts its calls.
type chatLLM struct {
	mu     sync.Mutex
	reply  string
	status int
	calls  atomic.Int32
}

func (l *chatLLM) setReply(reply string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reply = reply
}

func (l *chatLLM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.calls.Add(1)
	l.mu.Lock()
	reply := l.reply
	l.mu.Unlock()

	if l.status != 0 {
		w.WriteHeader(l.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]string{"role": "assistant", "content": reply}},
		},
	})
}

func startLLM(t *testing.T, l *chatLLM) string {
	t.Helper()
	srv := httptest.NewServer(l)
	t.Cleanup(srv.Close)
	return srv.URL
}

// dailyProvider serves a daily series with one bar per close, oldest
// first from 2024-03-01.
func dailyProvider(t *testing.T, closes ...string) string {
	t.Helper()
	series := map[string]any{}
	for i, c := range closes {
		series[fmt.Sprintf("2024-03-%02d", i+1)] = map[string]string{
			"1. open": c, "2. high": c, "3. low": c, "4. close": c, "5. volume": "500",
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"Time Series (Daily)": series})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}
