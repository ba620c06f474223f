package reqctx

import (
	"errors"
	"testing"
)

func TestPropertiesScope(t *testing.T) {
	p := NewProperties()
	p.Set(PropRequestID, "abc", DefaultScopeOf(PropRequestID))
	p.Set(PropTraceID, "0af7651916cd43dd8448eb211c80319c", DefaultScopeOf(PropTraceID))

	if s, ok := p.Scope(PropRequestID); !ok || s != ScopeApplication {
		t.Errorf("Scope(%q) = %v, %v; want application", PropRequestID, s, ok)
	}
	if s, ok := p.Scope(PropTraceID); !ok || s != ScopeHandler {
		t.Errorf("Scope(%q) = %v, %v; want handler", PropTraceID, s, ok)
	}

	view := p.ApplicationView()
	if _, ok := view[PropTraceID]; ok {
		t.Errorf("ApplicationView() exposed %q", PropTraceID)
	}

	if err := p.SetScope(PropTraceID, ScopeApplication); err != nil {
		t.Fatalf("SetScope() error = %v", err)
	}
	view = p.ApplicationView()
	if view[PropTraceID] != "0af7651916cd43dd8448eb211c80319c" {
		t.Errorf("ApplicationView()[%q] = %v after promotion", PropTraceID, view[PropTraceID])
	}
}

func TestPropertiesSetScopeUnknownKey(t *testing.T) {
	p := NewProperties()
	err := p.SetScope("missing", ScopeApplication)
	if !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("SetScope() error = %v, want ErrUnknownProperty", err)
	}
}

func TestPropertiesZeroValue(t *testing.T) {
	var p Properties
	if _, ok := p.Get("x"); ok {
		t.Error("Get() on zero value reported a property")
	}
	p.Set("x", 1, ScopeApplication)
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestDefaultScopeOf(t *testing.T) {
	tests := []struct {
		key  string
		want PropertyScope
	}{
		{PropHTTPMethod, ScopeApplication},
		{PropHTTPHeaders, ScopeHandler},
		{PropWSDLOperation, ScopeApplication},
		{PropClientIP, ScopeHandler},
		{"X-Unlisted", ScopeHandler},
	}
	for _, tt := range tests {
		if got := DefaultScopeOf(tt.key); got != tt.want {
			t.Errorf("DefaultScopeOf(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestPropertyScopeString(t *testing.T) {
	if ScopeApplication.String() != "application" || ScopeHandler.String() != "handler" {
		t.Errorf("unexpected scope names %q, %q", ScopeApplication, ScopeHandler)
	}
	if PropertyScope(9).String() != "unknown" {
		t.Errorf("PropertyScope(9).String() = %q", PropertyScope(9).String())
	}
}

func TestApplicationViewCopiesValues(t *testing.T) {
	p := NewProperties()
	p.Set(PropHTTPHeaders, map[string][]string{"X-App-Locale": {"fa-IR"}}, ScopeApplication)
	p.Set("app.tags", []string{"a", "b"}, ScopeApplication)
	p.Set("app.nested", map[string]any{"ids": []any{"x"}}, ScopeApplication)

	first := p.ApplicationView()
	first[PropHTTPHeaders].(map[string][]string)["X-App-Locale"][0] = "en-US"
	first[PropHTTPHeaders].(map[string][]string)["X-Injected"] = []string{"1"}
	first["app.tags"].([]string)[0] = "z"
	first["app.nested"].(map[string]any)["ids"].([]any)[0] = "y"

	second := p.ApplicationView()
	headers := second[PropHTTPHeaders].(map[string][]string)
	if got := headers["X-App-Locale"][0]; got != "fa-IR" {
		t.Errorf("header changed through an earlier view: %q", got)
	}
	if _, ok := headers["X-Injected"]; ok {
		t.Error("header added through an earlier view")
	}
	if got := second["app.tags"].([]string)[0]; got != "a" {
		t.Errorf("slice changed through an earlier view: %q", got)
	}
	if got := second["app.nested"].(map[string]any)["ids"].([]any)[0]; got != "x" {
		t.Errorf("nested value changed through an earlier view: %v", got)
	}
}
