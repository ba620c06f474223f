package epr

import (
	"encoding/xml"
	"fmt"
)

// QName is a namespace-qualified name as used by WSDL.
type QName struct {
	Namespace string `json:"namespace"`
	Local     string `json:"local"`
}

// IsZero reports whether the name is unset.
func (q QName) IsZero() bool { return q.Local == "" }

// String renders the name in {namespace}local notation.
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Namespace, q.Local)
}

// Reference is a self reference rendered in one addressing standard.
// The concrete type tells which kind was produced.
type Reference interface {
	Kind() Kind
	URI() string
}

// qnameElement renders a QName as element text bound to the "tns" prefix.
type qnameElement struct {
	NS    string `xml:"xmlns:tns,attr,omitempty"`
	Value string `xml:",chardata"`
}

func newQNameElement(q QName) *qnameElement {
	if q.IsZero() {
		return nil
	}
	if q.Namespace == "" {
		return &qnameElement{Value: q.Local}
	}
	return &qnameElement{NS: q.Namespace, Value: "tns:" + q.Local}
}

// W3CReference is a WS-Addressing 1.0 endpoint reference.
type W3CReference struct {
	XMLName  xml.Name     `xml:"http://www.w3.org/2005/08/addressing EndpointReference"`
	Address  string       `xml:"Address"`
	Metadata *W3CMetadata `xml:"Metadata,omitempty"`
}

// W3CMetadata carries the wsaw naming elements and the embedded description document.
type W3CMetadata struct {
	InterfaceName *qnameElement      `xml:"http://www.w3.org/2006/05/addressing/wsdl InterfaceName,omitempty"`
	ServiceName   *w3cServiceElement `xml:"http://www.w3.org/2006/05/addressing/wsdl ServiceName,omitempty"`
	Document      []byte             `xml:",innerxml"`
}

type w3cServiceElement struct {
	NS           string `xml:"xmlns:tns,attr,omitempty"`
	EndpointName string `xml:"EndpointName,attr,omitempty"`
	Value        string `xml:",chardata"`
}

func (r *W3CReference) Kind() Kind  { return KindW3C }
func (r *W3CReference) URI() string { return r.Address }

// InterfaceName returns the wsaw:InterfaceName text, or "" when absent.
func (r *W3CReference) InterfaceName() string {
	if r.Metadata == nil || r.Metadata.InterfaceName == nil {
		return ""
	}
	return r.Metadata.InterfaceName.Value
}

// ServiceName returns the wsaw:ServiceName text and its EndpointName attribute.
func (r *W3CReference) ServiceName() (service, endpoint string) {
	if r.Metadata == nil || r.Metadata.ServiceName == nil {
		return "", ""
	}
	return r.Metadata.ServiceName.Value, r.Metadata.ServiceName.EndpointName
}

// Document returns the embedded description document, if any.
func (r *W3CReference) Document() []byte {
	if r.Metadata == nil {
		return nil
	}
	return r.Metadata.Document
}

// SubmissionReference is a WS-Addressing 2004/08 endpoint reference.
// That format has no metadata section, so no document is embedded.
type SubmissionReference struct {
	XMLName     xml.Name                  `xml:"http://schemas.xmlsoap.org/ws/2004/08/addressing EndpointReference"`
	Address     string                    `xml:"Address"`
	PortType    *qnameElement             `xml:"PortType,omitempty"`
	ServiceName *submissionServiceElement `xml:"ServiceName,omitempty"`
}

type submissionServiceElement struct {
	NS       string `xml:"xmlns:tns,attr,omitempty"`
	PortName string `xml:"PortName,attr,omitempty"`
	Value    string `xml:",chardata"`
}

func (r *SubmissionReference) Kind() Kind  { return KindSubmission }
func (r *SubmissionReference) URI() string { return r.Address }

// Marshal renders any reference as XML.
func Marshal(ref Reference) ([]byte, error) {
	if ref == nil {
		return nil, fmt.Errorf("epr: nil reference")
	}
	return xml.Marshal(ref)
}
