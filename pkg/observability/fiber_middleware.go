package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const tracerName = "github.com/Alijeyrad/wscontext/pkg/observability"

// HeaderTraceID returns the trace id to HTTP callers.
const HeaderTraceID = "X-Trace-Id"

// Route params whose values are recorded on spans and metrics.
const (
	routeParamEndpoint  = "endpoint"
	routeParamOperation = "operation"
)

// FiberMiddleware starts a server span per request and records request
// counts and latency. Endpoint and operation route params become attributes.
func FiberMiddleware(serviceName string) fiber.Handler {
	meter := otel.Meter(tracerName)
	requests, _ := meter.Int64Counter(
		"http_server_request_count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	latency, _ := meter.Float64Histogram(
		"http_server_request_duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return func(c fiber.Ctx) error {
		start := time.Now()

		ctx, span := StartServerSpan(c.Context(), c.Method()+" "+c.Path(), c.GetReqHeaders(),
			attribute.String("service.name", serviceName),
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", c.Path()),
			attribute.String("http.client_ip", c.IP()),
			attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
		)
		defer span.End()

		c.SetContext(ctx)
		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Set(HeaderTraceID, sc.TraceID().String())
		}

		err := c.Next()

		// The route is only known once routing has happened.
		route := c.Route().Path
		status := c.Response().StatusCode()
		elapsed := float64(time.Since(start).Microseconds()) / 1000

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		}
		if ep := c.Params(routeParamEndpoint); ep != "" {
			attrs = append(attrs, attribute.String("endpoint", ep))
		}
		if op := c.Params(routeParamOperation); op != "" {
			attrs = append(attrs, attribute.String("operation", op))
		}

		span.SetName(c.Method() + " " + route)
		span.SetAttributes(attrs...)
		requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		latency.Record(ctx, elapsed, metric.WithAttributes(attrs...))

		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
			if err != nil {
				span.RecordError(err)
			}
		}
		return err
	}
}
