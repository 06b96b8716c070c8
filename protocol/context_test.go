package protocol

import (
	"context"
	"testing"
)

func TestSetRequestMeta_CopiesParent(t *testing.T) {
	parent := SetRequestMeta(context.Background(), MetaTransport, "stdio")
	child := SetRequestMeta(parent, MetaRequestID, "req-1")

	if got := GetRequestMeta(parent, MetaRequestID); got != "" {
		t.Errorf("parent request id = %q, want empty", got)
	}
	if got := GetRequestMeta(child, MetaTransport); got != "stdio" {
		t.Errorf("child transport = %q, want stdio", got)
	}
}

func TestSessionID(t *testing.T) {
	if got := SessionIDFromContext(context.Background()); got != "" {
		t.Errorf("SessionIDFromContext() = %q, want empty", got)
	}
	ctx := WithSessionID(context.Background(), "abc")
	if got := SessionIDFromContext(ctx); got != "abc" {
		t.Errorf("SessionIDFromContext() = %q, want abc", got)
	}
}
