package middleware

import (
	"github.com/bazaarly/backbone/pkg/domain/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type queueTriggerMiddleware struct {
	logger *logrus.Logger
}

// NewQueueTriggerMiddleware only lets callers allowed to drain the queue through.
func NewQueueTriggerMiddleware(logger *logrus.Logger) Middleware {
	return &queueTriggerMiddleware{logger: logger}
}

func (m *queueTriggerMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := CallerFrom(c)
		if caller.CanTriggerQueue() {
			return c.Next()
		}
		m.logger.WithFields(logrus.Fields{
			"caller": caller.Kind(),
			"ip":     c.IP(),
		}).Warn("queue trigger refused")
		if caller.Kind() == identity.KindAnonymous {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "caller may not trigger the queue"})
	}
}
