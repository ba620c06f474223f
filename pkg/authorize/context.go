package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectFromContext extracts the GroupSubject from context. The caller
// identity of a bound request scope wins; transports that have only verified
// a token fall back to the claims.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	if _, err := reqctx.ScopeFromContext(ctx); err == nil {
		id, err := reqctx.CallerIdentity(ctx)
		if err == nil && id.Authenticated() && id.Name() != "" {
			return GroupSubject(id.Name()), nil
		}
		return "", ErrNoSubjectInContext
	}

	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil || claims.IsExpired() {
		return "", ErrNoSubjectInContext
	}
	if name := claims.Name(); name != "" {
		return GroupSubject(name), nil
	}
	return "", ErrNoSubjectInContext
}

// UserIDFromContext extracts the user ID as uuid.UUID from context.
// Returns uuid.Nil and error if not found.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil {
		return uuid.Nil, ErrNoSubjectInContext
	}
	userID := claims.GetUserID()
	if userID == uuid.Nil {
		return uuid.Nil, ErrNoSubjectInContext
	}
	return userID, nil
}

// DomainFromScope returns the endpoint domain of the request bound to ctx, or
// the sys domain outside a request.
func DomainFromScope(ctx context.Context) Domain {
	s, err := reqctx.ScopeFromContext(ctx)
	if err != nil || s.Endpoint() == "" {
		return DomainSys
	}
	return EndpointDomain(s.Endpoint())
}

// SubjectOrAnonymous is SubjectFromContext with AnonymousSubject for callers
// without an identity.
func SubjectOrAnonymous(ctx context.Context) GroupSubject {
	if sub, err := SubjectFromContext(ctx); err == nil {
		return sub
	}
	return AnonymousSubject
}
