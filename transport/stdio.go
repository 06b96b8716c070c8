package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// maxLineSize bounds a single JSON-RPC message on the stdio stream.
const maxLineSize = 4 << 20

// Stdio serves newline-delimited JSON-RPC over stdin/stdout. The whole
// stream is one session, and requests are handled one at a time in
// arrival order.
type Stdio struct {
	in  io.Reader
	out io.Writer

	mu sync.Mutex
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// NewStdio creates a stdio transport on os.Stdin and os.Stdout.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns "stdio".
func (s *Stdio) Addr() string {
	return "stdio"
}

// Serve reads requests until EOF or ctx is canceled.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	sessionID := newSessionID()
	defer closeSession(handler, sessionID)
	ctx = sessionContext(ctx, sessionID, "stdio")

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if len(line) == 0 {
				continue
			}
			if resp := serveMessage(ctx, handler, line); resp != nil {
				s.write(resp)
			}
		}
	}
}

func (s *Stdio) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.out.Write(append(data, '\n'))
}
