package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// StreamTransport exchanges newline-delimited JSON-RPC over a reader and
// writer, typically the stdio of a server process.
type StreamTransport struct {
	w    io.WriteCloser
	done chan struct{}

	mu       sync.Mutex
	pending  map[string]chan *protocol.Response
	closed   bool
	readErr  error
	onClose  func() error
	writeMux sync.Mutex
}

// NewStreamTransport reads responses from r and writes requests to w.
func NewStreamTransport(r io.Reader, w io.WriteCloser) *StreamTransport {
	t := &StreamTransport{
		w:       w,
		done:    make(chan struct{}),
		pending: make(map[string]chan *protocol.Response),
	}
	go t.readResponses(r)
	return t
}

// NewCommandTransport starts command and talks to it over its stdio.
// The child's stderr is passed to stderr when non-nil.
func NewCommandTransport(stderr io.Writer, command string, args ...string) (*StreamTransport, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	t := NewStreamTransport(stdout, stdin)
	t.onClose = cmd.Wait
	return t, nil
}

// Send writes req and waits for the response with the same id.
func (t *StreamTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var respCh chan *protocol.Response
	if !req.IsNotification() {
		respCh = make(chan *protocol.Response, 1)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, errors.New("transport closed")
	}
	key := string(req.ID)
	if respCh != nil {
		t.pending[key] = respCh
	}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, key)
		t.mu.Unlock()
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	t.writeMux.Lock()
	_, err = t.w.Write(append(data, '\n'))
	t.writeMux.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	if respCh == nil {
		return nil, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-respCh:
		return resp, nil
	case <-t.done:
		t.mu.Lock()
		err := t.readErr
		t.mu.Unlock()
		if err == nil {
			err = io.EOF
		}
		return nil, fmt.Errorf("server stream ended: %w", err)
	}
}

// Close closes the request stream and waits for the server to exit.
func (t *StreamTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	err := t.w.Close()
	<-t.done
	if t.onClose != nil {
		return t.onClose()
	}
	return err
}

func (t *StreamTransport) readResponses(r io.Reader) {
	defer close(t.done)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)
	for scanner.Scan() {
		var resp protocol.Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}

		t.mu.Lock()
		if ch, ok := t.pending[string(resp.ID)]; ok {
			ch <- &resp
		}
		t.mu.Unlock()
	}

	t.mu.Lock()
	t.readErr = scanner.Err()
	t.mu.Unlock()
}
