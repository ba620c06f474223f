package reqctx

import (
	"fmt"
	"maps"
	"slices"
)

// PropertyScope controls who may see a message property.
type PropertyScope int

const (
	// ScopeApplication properties are visible to endpoint handlers.
	ScopeApplication PropertyScope = iota

	// ScopeHandler properties are internal to the host and its transports.
	ScopeHandler
)

func (s PropertyScope) String() string {
	switch s {
	case ScopeApplication:
		return "application"
	case ScopeHandler:
		return "handler"
	default:
		return "unknown"
	}
}

type property struct {
	value any
	scope PropertyScope
}

// Properties is the message property map of one request. A Properties value
// is not safe for concurrent mutation; the dispatcher builds it, and NewScope
// takes a private copy.
type Properties struct {
	values map[string]property
}

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]property)}
}

// Set stores value under key with the given scope, replacing any previous value.
func (p *Properties) Set(key string, value any, scope PropertyScope) {
	if p.values == nil {
		p.values = make(map[string]property)
	}
	p.values[key] = property{value: value, scope: scope}
}

// Get returns the value stored under key regardless of its scope.
func (p *Properties) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v.value, ok
}

// Scope returns the scope of key.
func (p *Properties) Scope(key string) (PropertyScope, bool) {
	v, ok := p.values[key]
	return v.scope, ok
}

// SetScope changes the scope of an existing property.
func (p *Properties) SetScope(key string, scope PropertyScope) error {
	v, ok := p.values[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, key)
	}
	v.scope = scope
	p.values[key] = v
	return nil
}

// Len returns the number of properties of any scope.
func (p *Properties) Len() int { return len(p.values) }

// ApplicationView returns a fresh map holding only application-scope
// properties. Header maps, slices and nested maps are copied so callers
// cannot change what later views return.
func (p *Properties) ApplicationView() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		if v.scope == ScopeApplication {
			out[k] = copyValue(v.value)
		}
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string][]string:
		if t == nil {
			return t
		}
		c := make(map[string][]string, len(t))
		for k, vs := range t {
			c[k] = slices.Clone(vs)
		}
		return c
	case map[string]string:
		return maps.Clone(t)
	case map[string]any:
		if t == nil {
			return t
		}
		c := make(map[string]any, len(t))
		for k, x := range t {
			c[k] = copyValue(x)
		}
		return c
	case []string:
		return slices.Clone(t)
	case []byte:
		return slices.Clone(t)
	case []any:
		if t == nil {
			return t
		}
		c := make([]any, len(t))
		for i, x := range t {
			c[i] = copyValue(x)
		}
		return c
	default:
		return v
	}
}

func (p *Properties) clone() *Properties {
	c := &Properties{values: make(map[string]property, len(p.values))}
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}
