package authorize

import (
	"testing"
)

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		expected bool
	}{
		// Valid domains
		{"sys domain", DomainSys, true},
		{"wildcard domain", WildcardDomain, true},
		{"endpoint domain", Domain("endpoint:greeter"), true},
		{"endpoint domain with dots", Domain("endpoint:billing.v2"), true},

		// Invalid domains
		{"empty domain", Domain(""), false},
		{"random string", Domain("random"), false},
		{"endpoint without name", Domain("endpoint:"), false},
		{"endpoint with slash", Domain("endpoint:a/b"), false},
		{"unknown prefix", Domain("clinic:greeter"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidDomain(tt.domain)
			if result != tt.expected {
				t.Errorf("IsValidDomain(%q) = %v, want %v", tt.domain, result, tt.expected)
			}
		})
	}
}

func TestEndpointDomain(t *testing.T) {
	expected := Domain("endpoint:greeter")

	result := EndpointDomain("greeter")
	if result != expected {
		t.Errorf("EndpointDomain(%q) = %q, want %q", "greeter", result, expected)
	}

	name, ok := EndpointFromDomain(result)
	if !ok || name != "greeter" {
		t.Errorf("EndpointFromDomain(%q) = %q, %v", result, name, ok)
	}
}

func TestIsValidResource(t *testing.T) {
	tests := []struct {
		resource Resource
		expected bool
	}{
		{WildcardResource, true},
		{ResourceRegistry, true},
		{OperationResource("greeter", "sayHello"), true},
		{EndpointResource("greeter"), true},
		{Resource("/greeter/:operation"), true},
		{Resource("/greeter"), true},
		{Resource("greeter/sayHello"), false},
		{Resource("/greeter/say hello"), false},
		{Resource("unknown"), false},
	}

	for _, tt := range tests {
		if got := IsValidResource(tt.resource); got != tt.expected {
			t.Errorf("IsValidResource(%q) = %v, want %v", tt.resource, got, tt.expected)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleSysSuperAdmin, true},
		{RoleEndpointCaller, true},
		{WildcardRole, true},
		{Role("admin"), true},
		{Role("billing.reader"), true},
		{Role(""), false},
		{Role("bad role"), false},
		{Role(":leading"), false},
	}

	for _, tt := range tests {
		if got := IsValidRole(tt.role); got != tt.expected {
			t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.expected)
		}
	}
}

func TestKnownActions(t *testing.T) {
	// Verify all expected actions are in the known map
	expectedActions := []Action{
		ActionInvoke, ActionDescribe, ActionRegister, ActionUnregister,
		ActionManage, ActionGrant, ActionRevoke,
	}

	for _, action := range expectedActions {
		if _, ok := KnownActions[action]; !ok {
			t.Errorf("Expected action %q to be in KnownActions", action)
		}
	}
}

func TestKnownRoles(t *testing.T) {
	expectedRoles := []Role{
		RoleSysSuperAdmin, RoleSysOperator, RoleSysAuditor,
		RoleEndpointOwner, RoleEndpointCaller,
	}

	for _, role := range expectedRoles {
		if _, ok := KnownRoles[role]; !ok {
			t.Errorf("Expected role %q to be in KnownRoles", role)
		}
	}
}
