package descriptor

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Alijeyrad/wscontext/config"
)

// Static serves the endpoints declared in configuration. Documents are
// loaded on first lookup and kept for the life of the process.
type Static struct {
	loader    *DocumentLoader
	endpoints map[string]config.EndpointConfig

	mu   sync.Mutex
	docs map[string][]byte
}

var _ Source = (*Static)(nil)

// NewStatic builds a source from configured endpoints.
func NewStatic(endpoints []config.EndpointConfig, loader *DocumentLoader) *Static {
	m := make(map[string]config.EndpointConfig, len(endpoints))
	for _, ep := range endpoints {
		m[ep.Name] = ep
	}
	return &Static{
		loader:    loader,
		endpoints: m,
		docs:      make(map[string][]byte),
	}
}

// Lookup implements Source. The returned record owns its document bytes.
func (s *Static) Lookup(ctx context.Context, name string) (*Record, error) {
	ep, ok := s.endpoints[name]
	if !ok {
		return nil, ErrNotFound
	}

	rec := recordFromConfig(ep)
	doc, err := s.document(ctx, ep)
	if err != nil {
		return nil, err
	}
	rec.Descriptor.Document = bytes.Clone(doc)
	return &rec, nil
}

// Names returns the configured endpoint names in order.
func (s *Static) Names() []string {
	names := make([]string, 0, len(s.endpoints))
	for n := range s.endpoints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Static) document(ctx context.Context, ep config.EndpointConfig) ([]byte, error) {
	if ep.Document == "" {
		return nil, nil
	}

	s.mu.Lock()
	doc, ok := s.docs[ep.Name]
	s.mu.Unlock()
	if ok {
		return doc, nil
	}

	doc, err := s.loader.Load(ctx, ep.Document)
	if err != nil {
		return nil, fmt.Errorf("endpoint %s: %w", ep.Name, err)
	}

	s.mu.Lock()
	s.docs[ep.Name] = doc
	s.mu.Unlock()
	return doc, nil
}
