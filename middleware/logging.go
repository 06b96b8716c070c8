package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field is a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs every request once it completes.
// Protocol failures log at error, isError tool results at warn, pings at
// debug and everything else at info.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}
			if id := RequestIDFromContext(ctx); id != "" {
				fields = append(fields, F("request_id", id))
			}
			if sid := protocol.SessionIDFromContext(ctx); sid != "" {
				fields = append(fields, F("session_id", sid))
			}
			if name := toolName(req); name != "" {
				fields = append(fields, F("tool", name))
			}

			switch {
			case err != nil:
				logger.Error("request failed", append(fields, F("error", err.Error()))...)
			case toolFailed(resp):
				logger.Warn("tool reported an error", fields...)
			case req.Method == protocol.MethodPing:
				logger.Debug("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
			return resp, err
		}
	}
}

// NopLogger discards all entries.
type NopLogger struct{}

func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Warn(string, ...Field)  {}
