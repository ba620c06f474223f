package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var debugBuf, errBuf bytes.Buffer
	h := newMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("component", "test")

	logger.Debug("quiet")
	logger.Error("loud")

	assert.Contains(t, debugBuf.String(), "quiet")
	assert.Contains(t, debugBuf.String(), "loud")
	assert.NotContains(t, errBuf.String(), "quiet")
	assert.Contains(t, errBuf.String(), `"component":"test"`)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-1"})
	ctx = reqctx.WithTrace(ctx, &reqctx.TraceInfo{TraceID: "trace-1", SpanID: "span-1"})
	scope := reqctx.NewScope(reqctx.ScopeConfig{Endpoint: "greeter", Operation: "sayHello"})
	ctx = reqctx.WithScope(ctx, scope)

	FromContext(ctx, base).Info("handled")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "trace-1", rec["trace_id"])
	assert.Equal(t, "greeter", rec["endpoint"])
	assert.Equal(t, "sayHello", rec["operation"])
	assert.Equal(t, scope.ID(), rec["scope_id"])
}

func TestFromContextWithoutRequest(t *testing.T) {
	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	assert.Same(t, base, FromContext(context.Background(), base))
}
