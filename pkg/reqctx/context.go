package reqctx

import (
	"context"
	"time"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyClaims
	keyTrace
	keyScope
)

// RequestMeta holds per-request metadata set by transport middleware.
type RequestMeta struct {
	// RequestID is a unique identifier for this request.
	// Format: UUID v4 string unless supplied by the caller.
	RequestID string

	// ClientIP is the client's address as seen by the transport.
	ClientIP string

	// UserAgent is the client's User-Agent header value, if any.
	UserAgent string

	// Transport names the transport that received the request ("http", "nats").
	Transport string

	// RequestedAt is when the request was received.
	RequestedAt time.Time
}

// WithRequestMeta stores RequestMeta in the context.
func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

// RequestMetaFromContext retrieves RequestMeta from the context.
// Returns nil, false if not set.
func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	v := ctx.Value(keyRequestMeta)
	if v == nil {
		return nil, false
	}
	meta, ok := v.(*RequestMeta)
	return meta, ok && meta != nil
}

// RequestIDFromContext is a convenience function to get just the request ID.
// Returns empty string if RequestMeta is not set.
func RequestIDFromContext(ctx context.Context) string {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok {
		return ""
	}
	return meta.RequestID
}

// WithScope binds a request scope to the context. Only the dispatcher should
// call this; handlers receive the derived context.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, keyScope, s)
}

// ScopeFromContext returns the active scope bound to ctx. It fails with
// ErrInvalidState when no scope is bound or the bound scope has ended.
func ScopeFromContext(ctx context.Context) (*Scope, error) {
	if ctx == nil {
		return nil, ErrInvalidState
	}
	s, ok := ctx.Value(keyScope).(*Scope)
	if !ok || s == nil {
		return nil, ErrInvalidState
	}
	if !s.Active() {
		return nil, ErrInvalidState
	}
	return s, nil
}
