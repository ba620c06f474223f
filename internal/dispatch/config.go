package dispatch

import (
	"net/textproto"
	"strings"
	"time"

	"github.com/Alijeyrad/wscontext/config"
)

// Config controls how requests are turned into scopes.
type Config struct {
	// ApplicationHeaders are exposed to handlers by exact (case-insensitive) name.
	ApplicationHeaders []string

	// ApplicationHeaderPrefixes expose every header starting with a prefix.
	ApplicationHeaderPrefixes []string

	// ApplicationProperties promotes well-known properties to application scope.
	ApplicationProperties []string

	// HandlerTimeout bounds a handler call. Zero means no bound.
	HandlerTimeout time.Duration

	// BaseURL is used to build endpoint addresses when no descriptor is known.
	BaseURL string
}

func DefaultConfig() Config {
	return Config{
		ApplicationHeaderPrefixes: []string{"X-App-"},
		HandlerTimeout:            30 * time.Second,
		BaseURL:                   "http://localhost:8080",
	}
}

// FromCentralConfig converts the central configuration.
func FromCentralConfig(c *config.Config) Config {
	cfg := Config{
		ApplicationHeaders:        c.Dispatch.ApplicationHeaders,
		ApplicationHeaderPrefixes: c.Dispatch.ApplicationHeaderPrefixes,
		ApplicationProperties:     c.Dispatch.ApplicationProperties,
		BaseURL:                   c.Server.BaseURL,
	}
	if c.Dispatch.HandlerTimeoutSeconds > 0 {
		cfg.HandlerTimeout = time.Duration(c.Dispatch.HandlerTimeoutSeconds) * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	return cfg
}

// headerPolicy decides which headers handlers may see.
type headerPolicy struct {
	names    map[string]struct{}
	prefixes []string
}

func newHeaderPolicy(cfg Config) headerPolicy {
	p := headerPolicy{names: make(map[string]struct{}, len(cfg.ApplicationHeaders))}
	for _, h := range cfg.ApplicationHeaders {
		p.names[textproto.CanonicalMIMEHeaderKey(h)] = struct{}{}
	}
	for _, pre := range cfg.ApplicationHeaderPrefixes {
		if pre != "" {
			p.prefixes = append(p.prefixes, strings.ToLower(pre))
		}
	}
	return p
}

func (p headerPolicy) visible(canonical string) bool {
	if _, ok := p.names[canonical]; ok {
		return true
	}
	lower := strings.ToLower(canonical)
	for _, pre := range p.prefixes {
		if strings.HasPrefix(lower, pre) {
			return true
		}
	}
	return false
}
