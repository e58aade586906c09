package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"account-service/internal/jwt"
	"account-service/internal/service"
)

// fail converts a service-layer error into the uniform error envelope.
// Anything unclassified is a 500 with a generic message; internals are logged,
// never surfaced.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUpload):
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAlreadyExists):
		return respondError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return respondError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrTokenReused),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	default:
		slog.Error("unhandled error", "path", c.Path(), "error", err)
		return respondError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
