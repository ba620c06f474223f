package authorize

import (
	"fmt"
	"regexp"
	"strings"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	// ActionInvoke dispatches a request to an endpoint operation.
	ActionInvoke Action = "invoke"

	// ActionDescribe reads endpoint metadata (descriptor, references, WSDL).
	ActionDescribe Action = "describe"

	// Registry actions
	ActionRegister   Action = "register"
	ActionUnregister Action = "unregister"

	// Power action
	ActionManage Action = "manage"

	// RBAC-specific actions
	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionInvoke:     {},
	ActionDescribe:   {},
	ActionRegister:   {},
	ActionUnregister: {},
	ActionManage:     {},
	ActionGrant:      {},
	ActionRevoke:     {},
}

// ----------------------------
// Resources
// ----------------------------
//
// Endpoint operations are addressed by path ("/<endpoint>/<operation>") so
// policies can use keyMatch2 patterns such as "/greeter/*". Named resources
// cover everything that is not an operation.

const (
	WildcardResource Resource = "*"

	ResourceRegistry Resource = "registry"
	ResourceSystem   Resource = "system"
	ResourceRBAC     Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourceRegistry: {}, ResourceSystem: {}, ResourceRBAC: {},
}

var (
	reName         = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)
	reOperationKey = regexp.MustCompile(`^/:?[A-Za-z0-9_.\-]+(/(:?[A-Za-z0-9_.\-]+|\*))?$`)
	reRole         = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:\-]*$`)
)

// OperationResource addresses one operation of an endpoint.
func OperationResource(endpoint, operation string) Resource {
	return Resource("/" + endpoint + "/" + operation)
}

// EndpointResource addresses every operation of an endpoint.
func EndpointResource(endpoint string) Resource {
	return Resource("/" + endpoint + "/*")
}

// IsValidResource reports whether r is a named resource, the wildcard or an
// operation path.
func IsValidResource(r Resource) bool {
	if r == WildcardResource {
		return true
	}
	if _, ok := KnownResources[r]; ok {
		return true
	}
	return reOperationKey.MatchString(string(r))
}

// ----------------------------
// Roles
// ----------------------------
//
// Built-in roles are assigned by operators. Application roles (the names
// handlers pass to IsCallerInRole) are free-form and only need to be
// well-formed.

const (
	WildcardRole Role = "*"

	// Platform roles (domain = sys)
	RoleSysSuperAdmin Role = "role:sys:superadmin"
	RoleSysOperator   Role = "role:sys:operator"
	RoleSysAuditor    Role = "role:sys:auditor"

	// Endpoint roles (domain = endpoint:<name>)
	RoleEndpointOwner  Role = "role:endpoint:owner"
	RoleEndpointCaller Role = "role:endpoint:caller"
)

var KnownRoles = map[Role]struct{}{
	RoleSysSuperAdmin:  {},
	RoleSysOperator:    {},
	RoleSysAuditor:     {},
	RoleEndpointOwner:  {},
	RoleEndpointCaller: {},
}

// IsValidRole reports whether r is a built-in role or a well-formed
// application role name.
func IsValidRole(r Role) bool {
	if _, ok := KnownRoles[r]; ok || r == WildcardRole {
		return true
	}
	return reRole.MatchString(string(r))
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys Domain = "sys"
)

// Domain prefixes (for exact domains we generate per entity)
const (
	DomainPrefixEndpoint Domain = "endpoint:"
)

const (
	WildcardDomain Domain = "*"
)

// EndpointDomain returns the domain that scopes roles and permissions of one endpoint.
func EndpointDomain(endpoint string) Domain {
	return Domain(fmt.Sprintf("%s%s", DomainPrefixEndpoint, endpoint))
}

// EndpointFromDomain returns the endpoint name of an endpoint domain.
func EndpointFromDomain(d Domain) (string, bool) {
	name, ok := strings.CutPrefix(string(d), string(DomainPrefixEndpoint))
	if !ok || !reName.MatchString(name) {
		return "", false
	}
	return name, true
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == DomainSys || d == WildcardDomain {
		return true
	}
	_, ok := EndpointFromDomain(d)
	return ok
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a concrete principal name.
type GroupSubject string

// AnonymousSubject is enforced for requests without a caller identity.
// Policies may grant it roles like any other subject.
const AnonymousSubject GroupSubject = "anonymous"

// Grouping rows: g, subject, role, domain
type GroupingPolicy struct {
	Subject GroupSubject
	Role    Role
	Domain  Domain
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
