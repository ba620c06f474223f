package dispatch

import (
	"context"
	"net/textproto"
	"strings"

	"github.com/Alijeyrad/wscontext/internal/descriptor"
	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

// buildProperties assembles the message properties of req. Headers become
// properties named after the canonical header; the header policy decides
// whether handlers see them. Well-known keys get their default scope and
// configured keys are then promoted.
func (d *Dispatcher) buildProperties(ctx context.Context, req *Request, rec *descriptor.Record) *reqctx.Properties {
	props := reqctx.NewProperties()
	set := func(key string, value any) {
		props.Set(key, value, reqctx.DefaultScopeOf(key))
	}

	set(reqctx.PropMessageOutbound, false)

	if meta := req.Meta; meta != nil {
		if meta.RequestID != "" {
			set(reqctx.PropRequestID, meta.RequestID)
		}
		if meta.Transport != "" {
			set(reqctx.PropTransport, meta.Transport)
		}
		if meta.ClientIP != "" {
			set(reqctx.PropClientIP, meta.ClientIP)
		}
	}

	if req.Method != "" {
		set(reqctx.PropHTTPMethod, req.Method)
		set(reqctx.PropHTTPPath, req.Path)
		set(reqctx.PropHTTPQuery, req.Query)
	}

	if len(req.Headers) > 0 {
		all := make(map[string][]string, len(req.Headers))
		for name, values := range req.Headers {
			canonical := textproto.CanonicalMIMEHeaderKey(name)
			all[canonical] = append(all[canonical], values...)
		}
		for name, values := range all {
			scope := reqctx.ScopeHandler
			if d.headers.visible(name) {
				scope = reqctx.ScopeApplication
			}
			props.Set(name, strings.Join(values, ", "), scope)
		}
		set(reqctx.PropHTTPHeaders, all)
	}

	set(reqctx.PropWSDLOperation, req.Operation)
	if rec != nil {
		desc := rec.Descriptor
		if !desc.ServiceName.IsZero() {
			set(reqctx.PropWSDLService, desc.ServiceName.String())
		}
		if !desc.InterfaceName.IsZero() {
			set(reqctx.PropWSDLInterface, desc.InterfaceName.String())
		}
		if desc.EndpointName != "" {
			set(reqctx.PropWSDLPort, desc.EndpointName)
		}
	}

	if trace, ok := reqctx.TraceFromContext(ctx); ok {
		set(reqctx.PropTraceID, trace.TraceID)
		set(reqctx.PropSpanID, trace.SpanID)
	}

	for _, key := range d.cfg.ApplicationProperties {
		// Only present keys can be promoted.
		_ = props.SetScope(key, reqctx.ScopeApplication)
	}
	return props
}
