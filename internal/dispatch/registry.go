package dispatch

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Registry holds the endpoints a host serves.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
}

func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]Endpoint)}
}

// Register adds ep. Names must be non-empty and free of '/', '.' and
// whitespace since they appear in URL paths and NATS subjects.
func (r *Registry) Register(ep Endpoint) error {
	if err := validName(ep.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if len(ep.Operations) == 0 {
		return fmt.Errorf("%w: %s has no operations", ErrInvalidEndpoint, ep.Name)
	}
	for op, h := range ep.Operations {
		if err := validName(op); err != nil {
			return fmt.Errorf("%w: %s: operation %v", ErrInvalidEndpoint, ep.Name, err)
		}
		if h == nil {
			return fmt.Errorf("%w: %s.%s has no handler", ErrInvalidEndpoint, ep.Name, op)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.endpoints[ep.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEndpoint, ep.Name)
	}
	r.endpoints[ep.Name] = Endpoint{Name: ep.Name, Operations: maps.Clone(ep.Operations)}
	return nil
}

// MustRegister is Register that panics on error, for static wiring.
func (r *Registry) MustRegister(ep Endpoint) {
	if err := r.Register(ep); err != nil {
		panic(err)
	}
}

// Handler returns the handler for endpoint.operation.
func (r *Registry) Handler(endpoint, operation string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[endpoint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotFound, endpoint)
	}
	h, ok := ep.Operations[operation]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrOperationNotFound, endpoint, operation)
	}
	return h, nil
}

// Names returns the registered endpoint names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.endpoints))
}

// Operations returns the operation names of endpoint in order.
func (r *Registry) Operations(endpoint string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[endpoint]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(ep.Operations))
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if strings.ContainsAny(name, "/. \t\n*>") {
		return fmt.Errorf("name %q contains a reserved character", name)
	}
	return nil
}
