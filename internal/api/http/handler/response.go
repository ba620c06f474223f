package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/pkg/epr"
	"github.com/Alijeyrad/wscontext/pkg/logs"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func gatewayTimeout(c fiber.Ctx) error {
	return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "handler timed out"})
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// dispatchError maps dispatcher and handler errors to responses.
func dispatchError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, dispatch.ErrEndpointNotFound):
		return notFound(c, "endpoint not found")
	case errors.Is(err, dispatch.ErrOperationNotFound):
		return notFound(c, "operation not found")
	case errors.Is(err, epr.ErrUnsupportedKind):
		return badRequest(c, err.Error())
	case errors.Is(err, dispatch.ErrBadRequest):
		return badRequest(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return gatewayTimeout(c)
	default:
		logs.FromContext(c.Context(), nil).Error("request failed", "error", err)
		return internalError(c)
	}
}
