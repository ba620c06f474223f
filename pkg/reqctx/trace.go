package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// TraceInfo identifies the span a request is served in. IDs use the W3C
// trace context hex encoding.
type TraceInfo struct {
	TraceID  string // 32 hex chars
	SpanID   string // 16 hex chars
	ParentID string // empty for a root span
	Sampled  bool
}

func WithTrace(ctx context.Context, trace *TraceInfo) context.Context {
	return context.WithValue(ctx, keyTrace, trace)
}

func TraceFromContext(ctx context.Context) (*TraceInfo, bool) {
	trace, ok := ctx.Value(keyTrace).(*TraceInfo)
	return trace, ok && trace != nil
}

// TraceIDFromContext returns the trace ID, or "" without a trace.
func TraceIDFromContext(ctx context.Context) string {
	if trace, ok := TraceFromContext(ctx); ok {
		return trace.TraceID
	}
	return ""
}

// NewTraceInfo starts a new sampled root trace.
func NewTraceInfo() *TraceInfo {
	return &TraceInfo{TraceID: randomHex(16), SpanID: randomHex(8), Sampled: true}
}

// NewChildSpan returns a span under the trace in ctx, or a new root trace
// when ctx has none.
func NewChildSpan(ctx context.Context) *TraceInfo {
	parent, ok := TraceFromContext(ctx)
	if !ok {
		return NewTraceInfo()
	}
	return &TraceInfo{
		TraceID:  parent.TraceID,
		SpanID:   randomHex(8),
		ParentID: parent.SpanID,
		Sampled:  parent.Sampled,
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
