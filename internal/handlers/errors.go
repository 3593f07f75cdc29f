package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

// writeServiceError maps service errors onto HTTP responses. Anything not
// recognised is logged, reported to Sentry and returned as a generic 500.
func writeServiceError(c *fiber.Ctx, op string, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Validation failed", Details: verr.Fields,
		})
	case errors.Is(err, services.ErrApplianceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Appliance not found",
		})
	case errors.Is(err, services.ErrChildNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Record not found",
		})
	case errors.Is(err, services.ErrOwnerUnresolved):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "No owner could be determined for this appliance",
		})
	}

	slog.Error("request failed",
		"op", op,
		"request_id", requestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("op", op)
			hub.CaptureException(err)
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
