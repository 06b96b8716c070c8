package protocol

import "context"

type requestMetaKey struct{}

// Well-known RequestMeta keys.
const (
	MetaSessionID = "session_id"
	MetaRequestID = "request_id"
	MetaTransport = "transport"
)

// RequestMeta holds transport-level values attached to a request, such as
// the session id assigned by the transport or HTTP headers.
type RequestMeta map[string]string

// ContextWithRequestMeta returns a copy of ctx carrying meta.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the metadata attached to ctx, or nil.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return meta
	}
	return nil
}

// GetRequestMeta returns a single metadata value, or "" when absent.
func GetRequestMeta(ctx context.Context, key string) string {
	return RequestMetaFromContext(ctx)[key]
}

// SetRequestMeta returns a context whose metadata has key set to value.
// The metadata already attached to ctx is copied, never mutated.
func SetRequestMeta(ctx context.Context, key, value string) context.Context {
	prev := RequestMetaFromContext(ctx)
	meta := make(RequestMeta, len(prev)+1)
	for k, v := range prev {
		meta[k] = v
	}
	meta[key] = value
	return ContextWithRequestMeta(ctx, meta)
}

// WithSessionID tags ctx with the transport-assigned session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return SetRequestMeta(ctx, MetaSessionID, id)
}

// SessionIDFromContext returns the session id set by the transport.
func SessionIDFromContext(ctx context.Context) string {
	return GetRequestMeta(ctx, MetaSessionID)
}
