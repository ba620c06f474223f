package reqctx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alijeyrad/wscontext/pkg/epr"
)

// EndpointContext gives endpoint handlers access to information about the
// request currently being served. Every method fails with ErrInvalidState
// when ctx carries no active scope.
type EndpointContext interface {
	// MessageContext returns the application-scope message properties.
	MessageContext(ctx context.Context) (map[string]any, error)

	// CallerIdentity returns the identity of the sender.
	CallerIdentity(ctx context.Context) (Identity, error)

	// IsCallerInRole reports whether the sender is in role. Unauthenticated
	// callers and unknown roles yield false without error.
	IsCallerInRole(ctx context.Context, role string) (bool, error)

	// SelfReference returns the W3C endpoint reference of this endpoint.
	SelfReference(ctx context.Context) (*epr.W3CReference, error)

	// SelfReferenceOf returns the reference in the requested kind, or
	// ErrUnsupportedReferenceKind.
	SelfReferenceOf(ctx context.Context, kind epr.Kind) (epr.Reference, error)
}

// Accessor is the EndpointContext backed by the scope bound to ctx.
type Accessor struct {
	logger *slog.Logger
}

var _ EndpointContext = (*Accessor)(nil)

// NewAccessor returns an Accessor. A nil logger uses slog.Default() at call time.
func NewAccessor(logger *slog.Logger) *Accessor {
	return &Accessor{logger: logger}
}

func (a *Accessor) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

func (a *Accessor) MessageContext(ctx context.Context) (map[string]any, error) {
	s, err := ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.props.ApplicationView(), nil
}

func (a *Accessor) CallerIdentity(ctx context.Context) (Identity, error) {
	s, err := ScopeFromContext(ctx)
	if err != nil {
		return Anonymous(), err
	}
	return s.identity, nil
}

func (a *Accessor) IsCallerInRole(ctx context.Context, role string) (bool, error) {
	s, err := ScopeFromContext(ctx)
	if err != nil {
		return false, err
	}

	p, ok := s.identity.Principal()
	if !ok || role == "" || s.roles == nil {
		return false, nil
	}

	member, err := s.roles.IsMember(ctx, p, role)
	if err != nil {
		a.log().Warn("role membership lookup failed",
			"scope_id", s.id,
			"endpoint", s.endpoint,
			"principal", p.Name(),
			"role", role,
			"error", err,
		)
		return false, nil
	}
	return member, nil
}

func (a *Accessor) SelfReference(ctx context.Context) (*epr.W3CReference, error) {
	ref, err := a.SelfReferenceOf(ctx, epr.KindW3C)
	if err != nil {
		return nil, err
	}
	w3c, ok := ref.(*epr.W3CReference)
	if !ok {
		return nil, fmt.Errorf("%w: produced %T", ErrUnsupportedReferenceKind, ref)
	}
	return w3c, nil
}

func (a *Accessor) SelfReferenceOf(ctx context.Context, kind epr.Kind) (epr.Reference, error) {
	s, err := ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if s.refs == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReferenceKind, kind)
	}

	ref, err := s.refs.Reference(kind)
	if err != nil {
		return nil, err
	}
	if ref == nil || ref.Kind() != kind {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReferenceKind, kind)
	}
	return ref, nil
}

var defaultAccessor = NewAccessor(nil)

// MessageContext returns the application-scope message properties of the
// request bound to ctx.
func MessageContext(ctx context.Context) (map[string]any, error) {
	return defaultAccessor.MessageContext(ctx)
}

// CallerIdentity returns the identity of the sender of the request bound to ctx.
func CallerIdentity(ctx context.Context) (Identity, error) {
	return defaultAccessor.CallerIdentity(ctx)
}

// IsCallerInRole reports whether the sender of the request bound to ctx is in role.
func IsCallerInRole(ctx context.Context, role string) (bool, error) {
	return defaultAccessor.IsCallerInRole(ctx, role)
}

// SelfReference returns the W3C reference of the endpoint serving ctx.
func SelfReference(ctx context.Context) (*epr.W3CReference, error) {
	return defaultAccessor.SelfReference(ctx)
}

// SelfReferenceOf returns the reference of the endpoint serving ctx in kind.
func SelfReferenceOf(ctx context.Context, kind epr.Kind) (epr.Reference, error) {
	return defaultAccessor.SelfReferenceOf(ctx, kind)
}
