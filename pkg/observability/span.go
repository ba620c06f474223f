package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

var spanKindServer = trace.WithSpanKind(trace.SpanKindServer)

// StartServerSpan extracts the caller's trace context from headers, starts a
// server span and mirrors its IDs into reqctx so request logs and message
// properties can carry them. When no tracer provider is installed the span
// is a no-op and a locally generated trace is recorded instead.
func StartServerSpan(ctx context.Context, name string, headers map[string][]string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(http.Header(headers)))

	parent := trace.SpanContextFromContext(ctx)
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, spanKindServer, trace.WithAttributes(attrs...))

	sc := span.SpanContext()
	if sc.IsValid() {
		info := &reqctx.TraceInfo{
			TraceID: sc.TraceID().String(),
			SpanID:  sc.SpanID().String(),
			Sampled: sc.IsSampled(),
		}
		if parent.IsValid() {
			info.ParentID = parent.SpanID().String()
		}
		return reqctx.WithTrace(ctx, info), span
	}

	return reqctx.WithTrace(ctx, reqctx.NewChildSpan(ctx)), span
}

// InjectHeaders writes the trace context of ctx into headers for outgoing messages.
func InjectHeaders(ctx context.Context, headers map[string][]string) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(http.Header(headers)))
}
