package epr

import (
	"bytes"
	"fmt"
	"sort"
)

// Descriptor is the descriptive metadata a hosting runtime knows about an endpoint.
type Descriptor struct {
	InterfaceName QName  `json:"interface_name"`
	ServiceName   QName  `json:"service_name"`
	EndpointName  string `json:"endpoint_name"`

	// Document is the service description (WSDL) to embed, if available.
	Document []byte `json:"document,omitempty"`
}

// Endpoint identifies the endpoint a reference is built for.
type Endpoint struct {
	Address    string
	Descriptor *Descriptor
}

// Source produces references for one bound endpoint.
type Source interface {
	Reference(kind Kind) (Reference, error)
}

// Builder renders references in the kinds it was configured to support.
type Builder struct {
	supported map[Kind]struct{}
}

// NewBuilder returns a Builder supporting the given kinds. Kinds unknown to
// this package are rejected.
func NewBuilder(kinds ...Kind) (*Builder, error) {
	b := &Builder{supported: make(map[Kind]struct{}, len(kinds))}
	for _, k := range kinds {
		if _, ok := KnownKinds[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, k)
		}
		b.supported[k] = struct{}{}
	}
	return b, nil
}

// Supports reports whether kind can be produced.
func (b *Builder) Supports(kind Kind) bool {
	_, ok := b.supported[kind]
	return ok
}

// Kinds returns the supported kinds in sorted order.
func (b *Builder) Kinds() []Kind {
	out := make([]Kind, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build renders a reference of the requested kind. On failure the returned
// reference is always nil.
func (b *Builder) Build(kind Kind, ep Endpoint) (Reference, error) {
	if !b.Supports(kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	if ep.Address == "" {
		return nil, fmt.Errorf("epr: endpoint address is empty")
	}

	switch kind {
	case KindW3C:
		return buildW3C(ep), nil
	case KindSubmission:
		return buildSubmission(ep), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

// For binds the builder to one endpoint.
func (b *Builder) For(ep Endpoint) Source {
	return boundSource{b: b, ep: ep}
}

type boundSource struct {
	b  *Builder
	ep Endpoint
}

func (s boundSource) Reference(kind Kind) (Reference, error) {
	return s.b.Build(kind, s.ep)
}

func buildW3C(ep Endpoint) *W3CReference {
	ref := &W3CReference{Address: ep.Address}
	d := ep.Descriptor
	if d == nil {
		return ref
	}

	md := &W3CMetadata{
		InterfaceName: newQNameElement(d.InterfaceName),
		Document:      stripDeclaration(d.Document),
	}
	if !d.ServiceName.IsZero() {
		q := newQNameElement(d.ServiceName)
		md.ServiceName = &w3cServiceElement{NS: q.NS, Value: q.Value, EndpointName: d.EndpointName}
	}
	if md.InterfaceName != nil || md.ServiceName != nil || len(md.Document) > 0 {
		ref.Metadata = md
	}
	return ref
}

func buildSubmission(ep Endpoint) *SubmissionReference {
	ref := &SubmissionReference{Address: ep.Address}
	d := ep.Descriptor
	if d == nil {
		return ref
	}

	ref.PortType = newQNameElement(d.InterfaceName)
	if !d.ServiceName.IsZero() {
		q := newQNameElement(d.ServiceName)
		ref.ServiceName = &submissionServiceElement{NS: q.NS, Value: q.Value, PortName: d.EndpointName}
	}
	return ref
}

// stripDeclaration removes a leading <?xml ...?> so the document can be
// embedded. The result never shares memory with doc.
func stripDeclaration(doc []byte) []byte {
	doc = bytes.TrimSpace(doc)
	if bytes.HasPrefix(doc, []byte("<?xml")) {
		if end := bytes.Index(doc, []byte("?>")); end >= 0 {
			doc = bytes.TrimSpace(doc[end+2:])
		}
	}
	if len(doc) == 0 {
		return nil
	}
	return bytes.Clone(doc)
}
