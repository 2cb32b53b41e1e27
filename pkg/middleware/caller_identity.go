package middleware

import (
	"context"
	"time"

	"github.com/bazaarly/backbone/pkg/common"
	"github.com/bazaarly/backbone/pkg/domain/identity"
	"github.com/bazaarly/backbone/pkg/infra/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type callerIdentityMiddleware struct {
	logger   *logrus.Logger
	resolver auth.IdentityResolver
}

// NewCallerIdentityMiddleware decides the caller once per request and stores
// it in the fiber locals and the user context.
func NewCallerIdentityMiddleware(logger *logrus.Logger, resolver auth.IdentityResolver) Middleware {
	return &callerIdentityMiddleware{
		logger:   logger,
		resolver: resolver,
	}
}

func (m *callerIdentityMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := m.resolver.Resolve(c.Get(fiber.HeaderAuthorization), c.IP())

		c.Locals(common.CallerContextKey, caller)
		c.Locals(common.LatencyContextKey, time.Now())
		ctx := context.WithValue(c.UserContext(), common.CallerContextKey, caller)
		c.SetUserContext(ctx)

		m.logger.WithFields(logrus.Fields{
			"caller": caller.Kind(),
			"path":   c.Path(),
		}).Debug("caller resolved")
		return c.Next()
	}
}

// CallerFrom returns the caller stored by the identity middleware, or an
// anonymous caller keyed by the client IP when none is present.
func CallerFrom(c *fiber.Ctx) identity.Caller {
	if caller, ok := c.Locals(common.CallerContextKey).(identity.Caller); ok && caller != nil {
		return caller
	}
	return identity.Anonymous{Address: c.IP()}
}
