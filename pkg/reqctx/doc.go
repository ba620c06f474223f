// Package reqctx provides request-scoped context for endpoint handlers.
//
// This package is the single source of truth for all request-scoped data:
// request metadata, authentication claims, tracing information and the
// request scope that backs the endpoint context accessor.
//
// # Context Keys
//
// All context keys are private unexported types to prevent collisions.
// Access is provided through type-safe getter and setter functions.
//
// # Request Scope
//
// The dispatcher creates a Scope for every request it serves, binds it to
// the handler's context with WithScope and ends it when the handler returns:
//
//	scope := reqctx.NewScope(reqctx.ScopeConfig{
//	    Endpoint:   "greeter",
//	    Properties: props,
//	    Identity:   reqctx.IdentityFromClaims(claims),
//	    Roles:      roles,
//	    References: builder.For(endpoint),
//	})
//	defer scope.End()
//	resp, err := handler(reqctx.WithScope(ctx, scope), req)
//
// Handlers read it through the EndpointContext interface or the package
// level helpers:
//
//	props, err := reqctx.MessageContext(ctx)
//	id, err := reqctx.CallerIdentity(ctx)
//	ok, err := reqctx.IsCallerInRole(ctx, "admin")
//	ref, err := reqctx.SelfReference(ctx)
//
// # Contracts
//
//   - Every accessor call fails with ErrInvalidState when no scope is bound
//     or the bound scope has ended
//   - MessageContext never returns ScopeHandler properties
//   - IsCallerInRole is false for anonymous callers and unknown roles
//   - SelfReferenceOf fails with ErrUnsupportedReferenceKind and a nil
//     reference when the kind cannot be produced
package reqctx
