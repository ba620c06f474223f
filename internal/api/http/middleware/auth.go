package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/wscontext/internal/service/session"
	"github.com/Alijeyrad/wscontext/pkg/logs"
	pasetotoken "github.com/Alijeyrad/wscontext/pkg/paseto"
)

// Authenticate validates a Bearer PASETO access token. With required=false
// requests without a token pass through with an anonymous caller.
// On success, stores *pasetotoken.Claims in c.Locals(pasetotoken.CtxKeyClaims)
// and in the request context.
func Authenticate(mgr *pasetotoken.Manager, required bool) fiber.Handler {
	return pasetotoken.FiberAuth(mgr, required)
}

// RequireSession rejects tokens whose session is no longer stored in Redis.
// Tokens without a session id are left alone.
func RequireSession(sessions session.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		if !ok || claims.SessionID == nil {
			return c.Next()
		}

		if _, err := sessions.Check(c.Context(), *claims.SessionID); err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				logs.FromContext(c.Context(), nil).Error("session check failed", "error", err)
			}
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}
