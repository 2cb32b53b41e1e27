package http

import (
	domainErrors "github.com/bazaarly/backbone/pkg/domain/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// handleError maps application errors onto the JSON error envelope.
func handleError(c *fiber.Ctx, logger *logrus.Logger, err error, msg string) error {
	switch {
	case domainErrors.IsValidationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case domainErrors.IsNotFoundError(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithError(err).WithField("path", c.Path()).Error(msg)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
	}
}
