// Package introspect is a diagnostic endpoint. Each operation reports what
// the request context accessor returns for the request being served.
package introspect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/pkg/epr"
	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

// EndpointName is the name the service is registered under.
const EndpointName = "introspect"

const (
	OpContext   = "context"
	OpWhoAmI    = "whoami"
	OpInRole    = "inRole"
	OpReference = "reference"
)

const (
	mimeJSON = "application/json"
	mimeXML  = "application/xml; charset=utf-8"
)

type Service struct {
	wsctx reqctx.EndpointContext
}

// New returns the service. A nil accessor uses the package-level one.
func New(wsctx reqctx.EndpointContext) *Service {
	if wsctx == nil {
		wsctx = reqctx.NewAccessor(nil)
	}
	return &Service{wsctx: wsctx}
}

// Endpoint returns the service as a dispatchable endpoint.
func (s *Service) Endpoint() dispatch.Endpoint {
	return dispatch.Endpoint{
		Name: EndpointName,
		Operations: map[string]dispatch.Handler{
			OpContext:   dispatch.HandlerFunc(s.Context),
			OpWhoAmI:    dispatch.HandlerFunc(s.WhoAmI),
			OpInRole:    dispatch.HandlerFunc(s.InRole),
			OpReference: dispatch.HandlerFunc(s.Reference),
		},
	}
}

// Context returns the message properties visible to the application.
func (s *Service) Context(ctx context.Context, _ *dispatch.Request) (*dispatch.Response, error) {
	props, err := s.wsctx.MessageContext(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResponse(map[string]any{"properties": props})
}

type whoAmIResponse struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name,omitempty"`
}

// WhoAmI returns the caller identity.
func (s *Service) WhoAmI(ctx context.Context, _ *dispatch.Request) (*dispatch.Response, error) {
	id, err := s.wsctx.CallerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResponse(whoAmIResponse{Authenticated: id.Authenticated(), Name: id.Name()})
}

type inRoleRequest struct {
	Role string `json:"role"`
}

type inRoleResponse struct {
	Role   string `json:"role"`
	Member bool   `json:"member"`
}

// InRole answers whether the caller holds the role named in the body.
func (s *Service) InRole(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	var in inRoleRequest
	if err := json.Unmarshal(req.Body, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", dispatch.ErrBadRequest, err)
	}
	if in.Role == "" {
		return nil, fmt.Errorf("%w: role is required", dispatch.ErrBadRequest)
	}

	member, err := s.wsctx.IsCallerInRole(ctx, in.Role)
	if err != nil {
		return nil, err
	}
	return jsonResponse(inRoleResponse{Role: in.Role, Member: member})
}

type referenceRequest struct {
	Kind string `json:"kind"`
}

// Reference returns the endpoint's own reference as XML. The body may name
// a kind; the default is the W3C form.
func (s *Service) Reference(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	var in referenceRequest
	if len(req.Body) > 0 {
		if err := json.Unmarshal(req.Body, &in); err != nil {
			return nil, fmt.Errorf("%w: %v", dispatch.ErrBadRequest, err)
		}
	}

	var (
		ref epr.Reference
		err error
	)
	if in.Kind == "" {
		ref, err = s.wsctx.SelfReference(ctx)
	} else {
		kind, perr := epr.ParseKind(in.Kind)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", dispatch.ErrBadRequest, perr)
		}
		ref, err = s.wsctx.SelfReferenceOf(ctx, kind)
	}
	if err != nil {
		return nil, err
	}

	out, err := epr.Marshal(ref)
	if err != nil {
		return nil, err
	}
	return &dispatch.Response{Body: out, ContentType: mimeXML}, nil
}

func jsonResponse(v any) (*dispatch.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &dispatch.Response{Body: body, ContentType: mimeJSON}, nil
}
