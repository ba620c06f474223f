package reqctx

// Well-known message property keys populated by the host.
const (
	PropMessageOutbound = "message.outbound"
	PropRequestID       = "request.id"
	PropTransport       = "request.transport"
	PropClientIP        = "client.ip"

	PropHTTPMethod  = "http.request.method"
	PropHTTPPath    = "http.request.path"
	PropHTTPQuery   = "http.request.query"
	PropHTTPHeaders = "http.request.headers"

	PropWSDLService   = "wsdl.service"
	PropWSDLPort      = "wsdl.port"
	PropWSDLInterface = "wsdl.interface"
	PropWSDLOperation = "wsdl.operation"

	PropTraceID = "trace.id"
	PropSpanID  = "span.id"
)

// DefaultScopes is the visibility of each well-known key. Keys not listed here
// default to ScopeHandler.
var DefaultScopes = map[string]PropertyScope{
	PropMessageOutbound: ScopeApplication,
	PropRequestID:       ScopeApplication,
	PropTransport:       ScopeApplication,
	PropClientIP:        ScopeHandler,

	PropHTTPMethod:  ScopeApplication,
	PropHTTPPath:    ScopeApplication,
	PropHTTPQuery:   ScopeApplication,
	PropHTTPHeaders: ScopeHandler,

	PropWSDLService:   ScopeApplication,
	PropWSDLPort:      ScopeApplication,
	PropWSDLInterface: ScopeApplication,
	PropWSDLOperation: ScopeApplication,

	PropTraceID: ScopeHandler,
	PropSpanID:  ScopeHandler,
}

// DefaultScopeOf returns the default visibility of a well-known key.
func DefaultScopeOf(key string) PropertyScope {
	if s, ok := DefaultScopes[key]; ok {
		return s
	}
	return ScopeHandler
}
