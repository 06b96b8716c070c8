// Package testutil drives tool servers from tests.
//
//	func TestQuiz(t *testing.T) {
//	    tc := testutil.NewTestClient(t, quizserver.New(deps))
//
//	    text := tc.CallText("get-random-question", nil)
//	    tc.AssertToolExists("submit-answer")
//	}
package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-adapters/client"
	"github.com/felixgeelhaar/mcp-adapters/protocol"
	"github.com/felixgeelhaar/mcp-adapters/server"
)

// TestClient is an initialized client bound to one session of a server.
type TestClient struct {
	*client.Client

	t   testing.TB
	srv *server.Server
}

// NewTestClient connects to srv in process under the "default" session and
// performs the handshake. The client is closed when the test ends.
func NewTestClient(t testing.TB, srv *server.Server) *TestClient {
	t.Helper()
	return NewSessionClient(t, srv, server.DefaultSessionID)
}

// NewSessionClient is NewTestClient with an explicit session id, for
// tests that need several independent callers.
func NewSessionClient(t testing.TB, srv *server.Server, sessionID string) *TestClient {
	t.Helper()

	if err := srv.Err(); err != nil {
		t.Fatalf("server registration failed: %v", err)
	}

	c := client.New(client.NewInProcess(server.NewHandler(srv), sessionID))
	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return &TestClient{Client: c, t: t, srv: srv}
}

// Call invokes a tool and fails the test on a JSON-RPC error.
func (tc *TestClient) Call(name string, args any) *protocol.CallToolResult {
	tc.t.Helper()
	res, err := tc.CallTool(context.Background(), name, args)
	if err != nil {
		tc.t.Fatalf("tool %s failed: %v", name, err)
	}
	return res
}

// CallText invokes a tool that must succeed and returns its text.
func (tc *TestClient) CallText(name string, args any) string {
	tc.t.Helper()
	res := tc.Call(name, args)
	if res.IsError {
		tc.t.Fatalf("tool %s reported an error: %s", name, Text(res))
	}
	return Text(res)
}

// CallError invokes a tool that must report an error and returns the
// error text.
func (tc *TestClient) CallError(name string, args any) string {
	tc.t.Helper()
	res := tc.Call(name, args)
	if !res.IsError {
		tc.t.Fatalf("tool %s succeeded, want error: %s", name, Text(res))
	}
	return Text(res)
}

// ReadText reads a resource that must succeed and returns its first text.
func (tc *TestClient) ReadText(uri string) string {
	tc.t.Helper()
	contents, err := tc.ReadResource(context.Background(), uri)
	if err != nil {
		tc.t.Fatalf("read %s failed: %v", uri, err)
	}
	if len(contents) == 0 {
		tc.t.Fatalf("read %s returned no contents", uri)
	}
	return contents[0].Text
}

// Session returns the server-side session this client runs in.
func (tc *TestClient) Session(id string) *server.Session {
	tc.t.Helper()
	s, ok := tc.srv.Sessions().Lookup(id)
	if !ok {
		tc.t.Fatalf("session %q not found", id)
	}
	return s
}

// AssertToolExists fails the test when no tool is named name.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools(context.Background())
	if err != nil {
		tc.t.Fatalf("ListTools failed: %v", err)
	}
	for _, tool := range tools {
		if tool.Name == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}

// AssertResourceExists fails the test when no resource or resource
// template has the given URI.
func (tc *TestClient) AssertResourceExists(uri string) {
	tc.t.Helper()

	ctx := context.Background()
	fixed, err := tc.ListResources(ctx)
	if err != nil {
		tc.t.Fatalf("ListResources failed: %v", err)
	}
	templates, err := tc.ListResourceTemplates(ctx)
	if err != nil {
		tc.t.Fatalf("ListResourceTemplates failed: %v", err)
	}
	for _, r := range append(fixed, templates...) {
		if r.URI == uri || r.URITemplate == uri {
			return
		}
	}
	tc.t.Errorf("resource %q not found", uri)
}

// Text joins the text parts of a tool result.
func Text(res *protocol.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if c.Type == protocol.ContentText {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
