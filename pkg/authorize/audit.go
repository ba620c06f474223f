package authorize

import (
	"context"
	"log/slog"
	"time"

	casbin "github.com/casbin/casbin/v2"

	"github.com/Alijeyrad/wscontext/pkg/logs"
)

// Audit event names.
const (
	eventDecision         = "authz_decision"
	eventRoleCheck        = "authz_role_check"
	eventRoleChange       = "authz_role_change"
	eventPermissionChange = "authz_permission_change"
)

// AuditedAuthorization logs every decision and policy change of the wrapped
// implementation. Records carry the request id and trace id of ctx.
//
// A denial in the endpoint domain is routinely followed by a check in sys,
// so denials are logged at info level.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{inner: inner, logger: logger}
}

func (a *AuditedAuthorization) record(ctx context.Context, level slog.Level, event string, err error, attrs ...any) {
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, "error", err.Error())
	}
	logs.FromContext(ctx, a.logger).Log(ctx, level, event, attrs...)
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, domain, object, action)

	a.record(ctx, slog.LevelInfo, eventDecision, err,
		"subject", string(subject),
		"domain", string(domain),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, domain, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// HasRole backs IsCallerInRole, which handlers may call often; checks are
// logged at debug level.
func (a *AuditedAuthorization) HasRole(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	member, err := a.inner.HasRole(ctx, subject, role, domain)
	a.record(ctx, slog.LevelDebug, eventRoleCheck, err,
		"subject", string(subject),
		"role", string(role),
		"domain", string(domain),
		"member", member,
	)
	return member, err
}

func (a *AuditedAuthorization) AddRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	added, err := a.inner.AddRoleForUserInDomain(ctx, subject, role, domain)
	a.roleChange(ctx, "add_role", subject, role, domain, added, err)
	return added, err
}

func (a *AuditedAuthorization) RemoveRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	removed, err := a.inner.RemoveRoleForUserInDomain(ctx, subject, role, domain)
	a.roleChange(ctx, "remove_role", subject, role, domain, removed, err)
	return removed, err
}

func (a *AuditedAuthorization) roleChange(ctx context.Context, op string, subject GroupSubject, role Role, domain Domain, changed bool, err error) {
	a.record(ctx, slog.LevelInfo, eventRoleChange, err,
		"operation", op,
		"subject", string(subject),
		"role", string(role),
		"domain", string(domain),
		"changed", changed,
	)
}

func (a *AuditedAuthorization) GetRolesForUserInDomain(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	return a.inner.GetRolesForUserInDomain(ctx, subject, domain)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, domain, object, action, effect)
	a.permissionChange(ctx, "add_permission", PermissionPolicy{role, domain, object, action, effect}, added, err)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, role, domain, object, action, effect)
	a.permissionChange(ctx, "remove_permission", PermissionPolicy{role, domain, object, action, effect}, removed, err)
	return removed, err
}

func (a *AuditedAuthorization) permissionChange(ctx context.Context, op string, p PermissionPolicy, changed bool, err error) {
	a.record(ctx, slog.LevelInfo, eventPermissionChange, err,
		"operation", op,
		"role", string(p.Subject),
		"domain", string(p.Domain),
		"resource", string(p.Object),
		"action", string(p.Action),
		"effect", string(p.Effect),
		"changed", changed,
	)
}

func (a *AuditedAuthorization) Raw() *casbin.DistributedEnforcer {
	return a.inner.Raw()
}
