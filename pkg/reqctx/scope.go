package reqctx

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Alijeyrad/wscontext/pkg/epr"
)

// RoleMembership answers role questions for an authenticated principal.
// Implementations return false, nil for roles they do not know.
type RoleMembership interface {
	IsMember(ctx context.Context, p Principal, role string) (bool, error)
}

// RoleMembershipFunc adapts a function to RoleMembership.
type RoleMembershipFunc func(ctx context.Context, p Principal, role string) (bool, error)

func (f RoleMembershipFunc) IsMember(ctx context.Context, p Principal, role string) (bool, error) {
	return f(ctx, p, role)
}

// ScopeConfig carries everything the dispatcher knows about one request.
type ScopeConfig struct {
	// Endpoint is the name of the endpoint serving the request.
	Endpoint string

	// Operation is the operation being invoked.
	Operation string

	Meta       *RequestMeta
	Properties *Properties
	Identity   Identity

	// Roles answers IsCallerInRole. Nil means no caller is in any role.
	Roles RoleMembership

	// References produces self references. Nil means no kind can be produced.
	References epr.Source
}

// Scope is the binding between one unit of work and the request it serves.
// It is created by the dispatcher when handling begins and ended when
// handling returns; once ended every accessor call through it fails with
// ErrInvalidState.
type Scope struct {
	id        string
	endpoint  string
	operation string
	meta      *RequestMeta
	props     *Properties
	identity  Identity
	roles     RoleMembership
	refs      epr.Source

	ended atomic.Bool
}

// NewScope creates an active scope. The property map is copied so later
// changes by the caller are not observed.
func NewScope(cfg ScopeConfig) *Scope {
	props := cfg.Properties
	if props == nil {
		props = NewProperties()
	} else {
		props = props.clone()
	}

	meta := cfg.Meta
	if meta == nil {
		meta = &RequestMeta{}
	}

	return &Scope{
		id:        uuid.NewString(),
		endpoint:  cfg.Endpoint,
		operation: cfg.Operation,
		meta:      meta,
		props:     props,
		identity:  cfg.Identity,
		roles:     cfg.Roles,
		refs:      cfg.References,
	}
}

// ID returns the unique identifier of this scope.
func (s *Scope) ID() string { return s.id }

// Endpoint returns the name of the endpoint serving the request.
func (s *Scope) Endpoint() string { return s.endpoint }

// Operation returns the invoked operation.
func (s *Scope) Operation() string { return s.operation }

// Meta returns the request metadata captured by the transport.
func (s *Scope) Meta() *RequestMeta { return s.meta }

// Active reports whether the request is still being served.
func (s *Scope) Active() bool { return !s.ended.Load() }

// End marks the scope as finished. It is safe to call more than once.
func (s *Scope) End() { s.ended.Store(true) }
