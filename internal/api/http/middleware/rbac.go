package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/logs"
)

const (
	ParamEndpoint  = "endpoint"
	ParamOperation = "operation"
)

// RequireInvoke checks that the caller may invoke the operation named by the
// route params. The endpoint's own domain is tried first, then sys.
// Anonymous callers are checked as authorize.AnonymousSubject.
func RequireInvoke(auth authorize.IAuthorization) fiber.Handler {
	return func(c fiber.Ctx) error {
		endpoint := c.Params(ParamEndpoint)
		resource := authorize.OperationResource(endpoint, c.Params(ParamOperation))
		return enforce(c, auth, endpoint, resource, authorize.ActionInvoke)
	}
}

// RequireDescribe checks that the caller may describe the endpoint named by
// the route params.
func RequireDescribe(auth authorize.IAuthorization) fiber.Handler {
	return func(c fiber.Ctx) error {
		endpoint := c.Params(ParamEndpoint)
		return enforce(c, auth, endpoint, authorize.EndpointResource(endpoint), authorize.ActionDescribe)
	}
}

// RequirePermission checks a fixed resource and action in the endpoint
// domain named by the route, or in sys for routes without an endpoint.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		return enforce(c, auth, c.Params(ParamEndpoint), resource, action)
	}
}

func enforce(c fiber.Ctx, auth authorize.IAuthorization, endpoint string, resource authorize.Resource, action authorize.Action) error {
	subject := authorize.SubjectOrAnonymous(c.Context())

	allowed, err := authorize.EnforceForEndpoint(c.Context(), auth, subject, endpoint, resource, action)
	switch {
	case allowed:
		return c.Next()
	case errors.Is(err, authorize.ErrInvalidArgs):
		return fiber.ErrNotFound
	case err != nil:
		logs.FromContext(c.Context(), nil).Error("authorization failed", "error", err)
		return fiber.ErrInternalServerError
	case subject == authorize.AnonymousSubject:
		return fiber.ErrUnauthorized
	default:
		return fiber.ErrForbidden
	}
}
