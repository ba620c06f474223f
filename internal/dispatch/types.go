package dispatch

import (
	"context"

	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

// Request is one inbound message as a transport received it.
type Request struct {
	Endpoint  string
	Operation string
	Body      []byte
	Headers   map[string][]string

	// Method, Path and Query are set by the HTTP transport only.
	Method string
	Path   string
	Query  string

	Meta *reqctx.RequestMeta
}

// Response is what a handler returns to the transport.
type Response struct {
	Body        []byte
	ContentType string
	Headers     map[string]string
}

// Handler serves one operation. The context passed to Handle has the
// request scope bound; reqctx accessor calls made with it describe the
// request being served.
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Endpoint is a named set of operations.
type Endpoint struct {
	Name       string
	Operations map[string]Handler
}

// EndpointPath is the HTTP path prefix endpoints are served under.
const EndpointPath = "/api/v1/endpoints/"
