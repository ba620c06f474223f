package authorize

import (
	"context"
	"errors"

	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

// Membership answers reqctx role questions from Casbin grouping policies.
// A role counts when it is held in the endpoint's own domain or in the sys
// domain.
type Membership struct {
	auth    IAuthorization
	domains []Domain
}

var _ reqctx.RoleMembership = (*Membership)(nil)

// NewMembership returns the role membership used for requests to endpoint.
func NewMembership(auth IAuthorization, endpoint string) *Membership {
	return &Membership{auth: auth, domains: EndpointDomains(endpoint)}
}

// EndpointDomains lists the domains consulted for requests to endpoint,
// most specific first.
func EndpointDomains(endpoint string) []Domain {
	if endpoint == "" {
		return []Domain{DomainSys}
	}
	return []Domain{EndpointDomain(endpoint), DomainSys}
}

// EnforceForEndpoint reports whether subject may act on object in any of
// the endpoint's domains. Errors from individual domains are joined and
// only returned when no domain allows the request.
func EnforceForEndpoint(ctx context.Context, auth IAuthorization, subject GroupSubject, endpoint string, object Resource, action Action) (bool, error) {
	var errs []error
	for _, d := range EndpointDomains(endpoint) {
		ok, err := auth.Enforce(ctx, subject, d, object, action)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}

// IsMember implements reqctx.RoleMembership. Malformed role names are not
// known to any policy and yield false without error.
func (m *Membership) IsMember(ctx context.Context, p reqctx.Principal, role string) (bool, error) {
	if m == nil || m.auth == nil || p == nil || p.Name() == "" {
		return false, nil
	}
	r := Role(role)
	if !IsValidRole(r) || r == WildcardRole {
		return false, nil
	}

	var errs []error
	for _, d := range m.domains {
		ok, err := m.auth.HasRole(ctx, GroupSubject(p.Name()), r, d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}
