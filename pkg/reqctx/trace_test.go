package reqctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceInfo(t *testing.T) {
	a, b := NewTraceInfo(), NewTraceInfo()
	assert.Len(t, a.TraceID, 32)
	assert.Len(t, a.SpanID, 16)
	assert.Empty(t, a.ParentID)
	assert.True(t, a.Sampled)
	assert.NotEqual(t, a.TraceID, b.TraceID)
}

func TestNewChildSpan(t *testing.T) {
	root := &TraceInfo{TraceID: "4bf92f3577b34da6a3ce929d0e0e4736", SpanID: "00f067aa0ba902b7"}
	ctx := WithTrace(context.Background(), root)

	child := NewChildSpan(ctx)
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)
	assert.False(t, child.Sampled)

	orphan := NewChildSpan(context.Background())
	assert.Empty(t, orphan.ParentID)
	assert.Len(t, orphan.TraceID, 32)
}

func TestTraceFromContext(t *testing.T) {
	_, ok := TraceFromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, TraceIDFromContext(context.Background()))

	info := NewTraceInfo()
	got, ok := TraceFromContext(WithTrace(context.Background(), info))
	require.True(t, ok)
	assert.Same(t, info, got)
	assert.Equal(t, info.TraceID, TraceIDFromContext(WithTrace(context.Background(), info)))
}
