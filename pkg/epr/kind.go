package epr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedKind is returned when a reference of a kind the hosting
// runtime cannot produce is requested.
var ErrUnsupportedKind = errors.New("unsupported endpoint reference kind")

// Kind selects the addressing standard a Reference is rendered in.
type Kind string

const (
	// KindW3C is the W3C WS-Addressing 1.0 (2005/08) endpoint reference.
	KindW3C Kind = "w3c"

	// KindSubmission is the WS-Addressing member submission (2004/08) reference.
	KindSubmission Kind = "submission"
)

// KnownKinds lists every kind this package knows how to render.
var KnownKinds = map[Kind]struct{}{
	KindW3C:        {},
	KindSubmission: {},
}

// Namespaces used in rendered references.
const (
	NamespaceW3C        = "http://www.w3.org/2005/08/addressing"
	NamespaceW3CWSDL    = "http://www.w3.org/2006/05/addressing/wsdl"
	NamespaceSubmission = "http://schemas.xmlsoap.org/ws/2004/08/addressing"
)

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := KnownKinds[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }
