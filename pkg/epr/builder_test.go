package epr

import (
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoint() Endpoint {
	return Endpoint{
		Address: "http://localhost:8080/api/v1/endpoints/greeter",
		Descriptor: &Descriptor{
			InterfaceName: QName{Namespace: "urn:example:greeter", Local: "Greeter"},
			ServiceName:   QName{Namespace: "urn:example:greeter", Local: "GreeterService"},
			EndpointName:  "GreeterPort",
			Document:      []byte(`<?xml version="1.0"?><definitions xmlns="http://schemas.xmlsoap.org/wsdl/" name="greeter"/>`),
		},
	}
}

func TestNewBuilder(t *testing.T) {
	t.Run("rejects unknown kinds", func(t *testing.T) {
		_, err := NewBuilder(KindW3C, Kind("jms"))
		require.ErrorIs(t, err, ErrUnsupportedKind)
	})

	t.Run("reports supported kinds", func(t *testing.T) {
		b, err := NewBuilder(KindSubmission, KindW3C)
		require.NoError(t, err)
		assert.Equal(t, []Kind{KindSubmission, KindW3C}, b.Kinds())
		assert.True(t, b.Supports(KindW3C))
	})
}

func TestBuildW3C(t *testing.T) {
	b, err := NewBuilder(KindW3C)
	require.NoError(t, err)

	ref, err := b.Build(KindW3C, testEndpoint())
	require.NoError(t, err)

	w3c, ok := ref.(*W3CReference)
	require.True(t, ok, "expected *W3CReference, got %T", ref)
	assert.Equal(t, KindW3C, w3c.Kind())
	assert.Equal(t, "http://localhost:8080/api/v1/endpoints/greeter", w3c.URI())
	assert.Equal(t, "tns:Greeter", w3c.InterfaceName())

	svc, port := w3c.ServiceName()
	assert.Equal(t, "tns:GreeterService", svc)
	assert.Equal(t, "GreeterPort", port)
	assert.False(t, strings.HasPrefix(string(w3c.Document()), "<?xml"), "declaration must be stripped")

	out, err := Marshal(w3c)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<EndpointReference xmlns="`+NamespaceW3C+`">`)
	assert.Contains(t, s, `<Address>http://localhost:8080/api/v1/endpoints/greeter</Address>`)
	assert.Contains(t, s, `EndpointName="GreeterPort"`)
	assert.Contains(t, s, `xmlns:tns="urn:example:greeter"`)
	assert.Contains(t, s, `<definitions xmlns="http://schemas.xmlsoap.org/wsdl/" name="greeter"/>`)

	// The rendered document must be well-formed XML.
	var probe struct {
		XMLName xml.Name
	}
	require.NoError(t, xml.Unmarshal(out, &probe))
	assert.Equal(t, "EndpointReference", probe.XMLName.Local)
}

func TestBuildWithoutDescriptor(t *testing.T) {
	b, _ := NewBuilder(KindW3C, KindSubmission)

	ref, err := b.Build(KindW3C, Endpoint{Address: "nats://wsctx.greeter"})
	require.NoError(t, err)
	w3c := ref.(*W3CReference)
	assert.Nil(t, w3c.Metadata)
	assert.Empty(t, w3c.InterfaceName())
}

func TestBuildSubmission(t *testing.T) {
	b, _ := NewBuilder(KindW3C, KindSubmission)

	ref, err := b.Build(KindSubmission, testEndpoint())
	require.NoError(t, err)

	sub, ok := ref.(*SubmissionReference)
	require.True(t, ok)
	assert.Equal(t, KindSubmission, sub.Kind())

	out, err := Marshal(sub)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, NamespaceSubmission)
	assert.Contains(t, s, `PortName="GreeterPort"`)
	assert.NotContains(t, s, "definitions")
}

func TestBuildUnsupportedKind(t *testing.T) {
	b, _ := NewBuilder(KindW3C)

	tests := []struct {
		name string
		kind Kind
	}{
		{"known but not enabled", KindSubmission},
		{"unknown kind", Kind("jms")},
		{"empty kind", Kind("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := b.For(testEndpoint()).Reference(tt.kind)
			if !errors.Is(err, ErrUnsupportedKind) {
				t.Fatalf("Reference(%q) error = %v, want ErrUnsupportedKind", tt.kind, err)
			}
			if ref != nil {
				t.Errorf("Reference(%q) returned %T, want nil", tt.kind, ref)
			}
		})
	}
}

func TestBuildRequiresAddress(t *testing.T) {
	b, _ := NewBuilder(KindW3C)
	ref, err := b.Build(KindW3C, Endpoint{})
	require.Error(t, err)
	assert.Nil(t, ref)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" W3C ")
	require.NoError(t, err)
	assert.Equal(t, KindW3C, k)

	_, err = ParseKind("jms")
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestBuildW3CCopiesDocument(t *testing.T) {
	b, err := NewBuilder(KindW3C)
	require.NoError(t, err)

	ep := testEndpoint()
	ep.Descriptor.Document = []byte(`<definitions name="greeter"/>`)

	first, err := b.Build(KindW3C, ep)
	require.NoError(t, err)
	doc := first.(*W3CReference).Document()
	copy(doc, "<XXXXXXXXXXX")

	second, err := b.Build(KindW3C, ep)
	require.NoError(t, err)
	assert.Equal(t, `<definitions name="greeter"/>`, string(second.(*W3CReference).Document()))
	assert.Equal(t, `<definitions name="greeter"/>`, string(ep.Descriptor.Document))
}
