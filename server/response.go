package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"fundo/service"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, message)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusUnauthorized, message)
}

func forbidden(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusForbidden, message)
}

// respondError maps service errors onto HTTP statuses. Unknown errors
// become an opaque 500, the detail stays in the process log.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		return badRequest(c, "insufficient balance")
	case errors.Is(err, service.ErrInvalidCredentials):
		return unauthorized(c, "invalid CPF or password")
	case errors.Is(err, service.ErrPermissionDenied):
		return forbidden(c, "permission denied")
	case errors.Is(err, service.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, service.ErrDuplicateUser):
		return errorJSON(c, fiber.StatusConflict, "cpf or email already registered")
	default:
		log.WithError(err).WithField("path", c.Path()).Error("Request failed")
		return errorJSON(c, fiber.StatusInternalServerError, "internal error")
	}
}
