package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/wscontext/pkg/epr"
)

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	if len(c.Dispatch.ReferenceKinds) == 0 {
		errs = append(errs, errors.New("dispatch.reference_kinds must list at least one kind"))
	}
	for _, k := range c.Dispatch.ReferenceKinds {
		if _, err := epr.ParseKind(k); err != nil {
			errs = append(errs, fmt.Errorf("dispatch.reference_kinds: %w", err))
		}
	}

	switch c.Descriptors.Store {
	case "", "static", "sql":
	default:
		errs = append(errs, fmt.Errorf("descriptors.store must be static or sql, got %q", c.Descriptors.Store))
	}

	switch strings.ToLower(c.Authentication.Paseto.Mode) {
	case "", "local", "public":
	default:
		errs = append(errs, fmt.Errorf("authentication.paseto.mode must be local or public, got %q", c.Authentication.Paseto.Mode))
	}

	seen := make(map[string]struct{}, len(c.Endpoints))
	for i, ep := range c.Endpoints {
		if ep.Name == "" {
			errs = append(errs, fmt.Errorf("endpoints[%d].name is required", i))
			continue
		}
		if strings.ContainsAny(ep.Name, "/. ") {
			errs = append(errs, fmt.Errorf("endpoints[%d].name %q must not contain '/', '.' or spaces", i, ep.Name))
		}
		if _, dup := seen[ep.Name]; dup {
			errs = append(errs, fmt.Errorf("endpoints[%d].name %q is duplicated", i, ep.Name))
		}
		seen[ep.Name] = struct{}{}
	}

	return errors.Join(errs...)
}

// EndpointByName returns the configured endpoint with the given name.
func (c *Config) EndpointByName(name string) (EndpointConfig, bool) {
	for _, ep := range c.Endpoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return EndpointConfig{}, false
}
