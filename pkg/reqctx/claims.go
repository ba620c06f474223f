package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// Principal is an authenticated identity associated with the sender of a request.
type Principal interface {
	// Name returns the principal's stable name, used as the authorization subject.
	Name() string
}

// AuthClaims defines the interface for authentication claims.
// This interface allows different token implementations (PASETO, JWT, etc.)
// to be used interchangeably.
type AuthClaims interface {
	Principal

	// GetUserID returns the authenticated user's ID.
	GetUserID() uuid.UUID

	// GetSessionID returns the session ID, if available.
	GetSessionID() *uuid.UUID

	// GetTokenType returns the token type (e.g., "access", "refresh").
	GetTokenType() string

	// IsExpired returns true if the token has expired.
	IsExpired() bool
}

// WithClaims stores authentication claims in the context. Transports call it
// after verifying a token; the dispatcher turns them into the caller identity.
func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext retrieves authentication claims from the context.
// Returns nil if not set or if the request is not authenticated.
func ClaimsFromContext(ctx context.Context) AuthClaims {
	v := ctx.Value(keyClaims)
	if v == nil {
		return nil
	}
	claims, ok := v.(AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// IsAuthenticated returns true if valid claims exist in the context.
func IsAuthenticated(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims != nil && !claims.IsExpired()
}

// Identity is the caller identity of a request: either a principal or nobody.
type Identity struct {
	principal Principal
}

// IdentityOf wraps p. A nil principal yields the anonymous identity.
func IdentityOf(p Principal) Identity {
	return Identity{principal: p}
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity { return Identity{} }

// Principal returns the authenticated principal, or nil, false when the caller
// is not authenticated.
func (i Identity) Principal() (Principal, bool) {
	return i.principal, i.principal != nil
}

// Authenticated reports whether a principal is present.
func (i Identity) Authenticated() bool { return i.principal != nil }

// Name returns the principal's name, or "" for anonymous callers.
func (i Identity) Name() string {
	if i.principal == nil {
		return ""
	}
	return i.principal.Name()
}

// IdentityFromClaims converts claims found by a transport into an identity.
// Missing or expired claims yield the anonymous identity.
func IdentityFromClaims(claims AuthClaims) Identity {
	if claims == nil || claims.IsExpired() {
		return Anonymous()
	}
	return IdentityOf(claims)
}
