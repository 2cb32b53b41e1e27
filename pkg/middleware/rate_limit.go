package middleware

import (
	"strconv"

	appRatelimit "github.com/bazaarly/backbone/pkg/app/ratelimit"
	"github.com/bazaarly/backbone/pkg/common"
	domain "github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type rateLimitMiddleware struct {
	logger  *logrus.Logger
	limiter appRatelimit.Limiter
	policy  domain.Policy
}

func NewRateLimitMiddleware(logger *logrus.Logger, limiter appRatelimit.Limiter, policy domain.Policy) Middleware {
	return &rateLimitMiddleware{
		logger:  logger,
		limiter: limiter,
		policy:  policy,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := CallerFrom(c)
		decision := m.limiter.CheckPolicy(c.UserContext(), caller.RateLimitIdentifier(), m.policy)
		if !WriteRateLimitHeaders(c, decision) {
			m.logger.WithFields(logrus.Fields{
				"key":         decision.Key,
				"retry_after": decision.RetryAfter.String(),
			}).Info("request rate limited")
			return RateLimited(c, decision)
		}
		return c.Next()
	}
}

// WriteRateLimitHeaders sets the standard quota headers and reports whether
// the decision admits the request.
func WriteRateLimitHeaders(c *fiber.Ctx, d domain.Decision) bool {
	c.Set(common.RateLimitLimitHeader, strconv.Itoa(d.Limit))
	c.Set(common.RateLimitRemainingHeader, strconv.Itoa(d.Remaining))
	c.Set(common.RateLimitResetHeader, strconv.FormatInt(d.ResetAt.Unix(), 10))
	if !d.Allowed {
		c.Set(common.RetryAfterHeader, strconv.Itoa(RetryAfterSeconds(d)))
	}
	return d.Allowed
}

func RateLimited(c *fiber.Ctx, d domain.Decision) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "rate limit exceeded",
		"retry_after": RetryAfterSeconds(d),
	})
}

func RetryAfterSeconds(d domain.Decision) int {
	return d.RetryAfterSeconds()
}
