package authorize

import (
	"context"
	"errors"
	"fmt"
	"slices"

	casbin "github.com/casbin/casbin/v2"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Enforce answers: "Is subject allowed to act on object inside domain?"
	Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error)

	// MustEnforce is convenience for services: return ErrForbidden if not allowed.
	MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error

	// HasRole reports whether subject holds role in domain, directly or through
	// role inheritance.
	HasRole(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error)

	// Role management (grouping policies): g, subject, role, domain
	AddRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error)
	RemoveRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error)
	GetRolesForUserInDomain(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error)

	// Permission management (policies): p, role, domain, object, action, eft
	AddPermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error)
	RemovePermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error)

	Raw() *casbin.DistributedEnforcer
}

// Authorization is a thin typed wrapper around casbin.Enforcer.
type Authorization struct {
	enforcer       *casbin.DistributedEnforcer
	superAdminRole Role
}

// Option customises an Authorization.
type Option func(*Authorization)

// WithoutSuperAdminBypass makes superadmins subject to ordinary policy checks.
func WithoutSuperAdminBypass() Option {
	return func(a *Authorization) { a.superAdminRole = "" }
}

// NewAuthorization wraps an already-configured Enforcer
func NewAuthorization(e *casbin.DistributedEnforcer, opts ...Option) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}

	if err := e.LoadPolicy(); err != nil {
		return nil, err
	}

	a := &Authorization{
		enforcer:       e,
		superAdminRole: RoleSysSuperAdmin,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Authorization) Raw() *casbin.DistributedEnforcer { return a.enforcer }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgs}, args...)...)
}

func checkDomain(domain Domain) error {
	if !IsValidDomain(domain) {
		return invalid("invalid domain: %q", domain)
	}
	return nil
}

func checkMembership(subject GroupSubject, role Role, domain Domain) error {
	if subject == "" || role == "" {
		return invalid("empty subject/role")
	}
	return checkDomain(domain)
}

// checkRule validates the object and action of a check or policy line.
func checkRule(domain Domain, object Resource, action Action) error {
	if err := checkDomain(domain); err != nil {
		return err
	}
	if !IsValidResource(object) {
		return invalid("unknown resource: %q", object)
	}
	if _, ok := KnownActions[action]; !ok && action != WildcardAction {
		return invalid("unknown action: %q", action)
	}
	return nil
}

func (a *Authorization) isSuperAdmin(subject GroupSubject) bool {
	if a.superAdminRole == "" {
		return false
	}
	roles := a.enforcer.GetRolesForUserInDomain(string(subject), string(DomainSys))
	return slices.Contains(roles, string(a.superAdminRole))
}

// Enforce checks (subject, domain, object, action) against the loaded
// policy. Superadmins pass every check unless the bypass is disabled.
func (a *Authorization) Enforce(_ context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	if subject == "" {
		return false, invalid("subject is empty")
	}
	if err := checkRule(domain, object, action); err != nil {
		return false, err
	}
	if a.isSuperAdmin(subject) {
		return true, nil
	}
	return a.enforcer.Enforce(string(subject), string(domain), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	allowed, err := a.Enforce(ctx, subject, domain, object, action)
	switch {
	case err != nil:
		return err
	case !allowed:
		return ErrForbidden
	}
	return nil
}

// HasRole follows role inheritance within domain.
func (a *Authorization) HasRole(_ context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	if err := checkMembership(subject, role, domain); err != nil {
		return false, err
	}
	roles, err := a.enforcer.GetImplicitRolesForUser(string(subject), string(domain))
	if err != nil {
		return false, err
	}
	return slices.Contains(roles, string(role)), nil
}

func (a *Authorization) AddRoleForUserInDomain(_ context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	if err := checkMembership(subject, role, domain); err != nil {
		return false, err
	}
	if !IsValidRole(role) {
		return false, invalid("invalid role: %q", role)
	}
	return a.enforcer.AddGroupingPolicy(string(subject), string(role), string(domain))
}

func (a *Authorization) RemoveRoleForUserInDomain(_ context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	if err := checkMembership(subject, role, domain); err != nil {
		return false, err
	}
	return a.enforcer.RemoveGroupingPolicy(string(subject), string(role), string(domain))
}

// GetRolesForUserInDomain lists direct assignments only.
func (a *Authorization) GetRolesForUserInDomain(_ context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	if subject == "" {
		return nil, invalid("subject is empty")
	}
	if err := checkDomain(domain); err != nil {
		return nil, err
	}
	names := a.enforcer.GetRolesForUserInDomain(string(subject), string(domain))
	roles := make([]Role, len(names))
	for i, n := range names {
		roles[i] = Role(n)
	}
	return roles, nil
}

func policyLine(role Role, domain Domain, object Resource, action Action, effect PolicyEffect) []any {
	return []any{string(role), string(domain), string(object), string(action), string(effect)}
}

func (a *Authorization) AddPermission(_ context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	if !IsValidRole(role) {
		return false, invalid("invalid role: %q", role)
	}
	if err := checkRule(domain, object, action); err != nil {
		return false, err
	}
	if effect != EffectAllow && effect != EffectDeny {
		return false, invalid("invalid effect: %q", effect)
	}
	return a.enforcer.AddPolicy(policyLine(role, domain, object, action, effect)...)
}

// RemovePermission accepts policies that no longer validate so stale
// lines can still be cleaned up.
func (a *Authorization) RemovePermission(_ context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	if role == "" || object == "" || action == "" || effect == "" {
		return false, invalid("empty permission fields")
	}
	if err := checkDomain(domain); err != nil {
		return false, err
	}
	return a.enforcer.RemovePolicy(policyLine(role, domain, object, action, effect)...)
}
