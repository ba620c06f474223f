package authorize

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultPolicies is the baseline RBAC policy set.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		// SuperAdmin: god mode
		{RoleSysSuperAdmin, WildcardDomain, WildcardResource, WildcardAction, EffectAllow},

		// Operator: manages the endpoint registry and RBAC
		{RoleSysOperator, DomainSys, ResourceRegistry, ActionManage, EffectAllow},
		{RoleSysOperator, DomainSys, ResourceRegistry, ActionDescribe, EffectAllow},
		{RoleSysOperator, DomainSys, ResourceRBAC, ActionGrant, EffectAllow},
		{RoleSysOperator, DomainSys, ResourceRBAC, ActionRevoke, EffectAllow},

		// Auditor: may describe anything, invoke nothing
		{RoleSysAuditor, WildcardDomain, WildcardResource, ActionDescribe, EffectAllow},

		// Endpoint owner: everything inside its endpoint domain
		{RoleEndpointOwner, WildcardDomain, WildcardResource, ActionInvoke, EffectAllow},
		{RoleEndpointOwner, WildcardDomain, WildcardResource, ActionDescribe, EffectAllow},

		// Endpoint caller: invoke and describe operations
		{RoleEndpointCaller, WildcardDomain, Resource("/:endpoint/*"), ActionInvoke, EffectAllow},
		{RoleEndpointCaller, WildcardDomain, Resource("/:endpoint/*"), ActionDescribe, EffectAllow},
	}
}

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}

// AssignEndpointRole grants role to subject inside the endpoint's domain.
// Application roles queried through IsCallerInRole are assigned this way.
func AssignEndpointRole(ctx context.Context, auth IAuthorization, subject, endpoint string, role Role) error {
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is empty", ErrInvalidArgs)
	}
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(subject), role, EndpointDomain(endpoint))
	return err
}

// RemoveEndpointRole revokes role from subject inside the endpoint's domain.
func RemoveEndpointRole(ctx context.Context, auth IAuthorization, subject, endpoint string, role Role) error {
	_, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(subject), role, EndpointDomain(endpoint))
	return err
}

// AssignSystemRole assigns a system-level role to a subject.
// Valid roles: RoleSysOperator, RoleSysAuditor, RoleSysSuperAdmin, or any
// application role that should hold on every endpoint.
func AssignSystemRole(ctx context.Context, auth IAuthorization, subject string, role Role) error {
	if !IsValidRole(role) || role == WildcardRole {
		return fmt.Errorf("%w: invalid role: %q", ErrInvalidArgs, role)
	}
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(subject), role, DomainSys)
	return err
}

// RemoveSystemRole removes a system-level role from a subject.
func RemoveSystemRole(ctx context.Context, auth IAuthorization, subject string, role Role) error {
	_, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(subject), role, DomainSys)
	return err
}

// GrantOperation allows role to invoke one operation of an endpoint. An
// operation of "*" grants the whole endpoint.
func GrantOperation(ctx context.Context, auth IAuthorization, role Role, endpoint, operation string) error {
	obj := OperationResource(endpoint, operation)
	if operation == "*" {
		obj = EndpointResource(endpoint)
	}
	_, err := auth.AddPermission(ctx, role, EndpointDomain(endpoint), obj, ActionInvoke, EffectAllow)
	return err
}
