package http

import (
	appRatelimit "github.com/bazaarly/backbone/pkg/app/ratelimit"
	"github.com/bazaarly/backbone/pkg/domain/identity"
	"github.com/bazaarly/backbone/pkg/handlers/http/request"
	"github.com/bazaarly/backbone/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type checkRateLimitHandler struct {
	logger   *logrus.Logger
	limiter  appRatelimit.Limiter
	policies *appRatelimit.PolicyTable
}

func NewCheckRateLimitHandler(
	logger *logrus.Logger,
	limiter appRatelimit.Limiter,
	policies *appRatelimit.PolicyTable,
) Handler {
	return &checkRateLimitHandler{
		logger:   logger,
		limiter:  limiter,
		policies: policies,
	}
}

// Handle counts one hit against a named policy on behalf of another service
// and returns the decision. A denied decision is still a 200.
// @Tags Rate limits
// @Accept json
// @Produce json
// @Param Authorization header string true "Service token"
// @Param request body request.CheckRateLimitRequest true "Policy and identifier"
// @Success 200 {object} ratelimit.Decision
// @Router /api/v1/rate-limits/check [post]
func (h *checkRateLimitHandler) Handle(c *fiber.Ctx) error {
	switch middleware.CallerFrom(c).Kind() {
	case identity.KindService:
	case identity.KindAnonymous:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "service credentials required"})
	}

	var req request.CheckRateLimitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return handleError(c, h.logger, err, "failed to check rate limit")
	}

	policy, ok := h.policies.Get(req.Policy)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown policy " + req.Policy})
	}

	decision := h.limiter.CheckPolicy(c.UserContext(), req.Identifier, policy)
	middleware.WriteRateLimitHeaders(c, decision)
	return c.Status(fiber.StatusOK).JSON(decision)
}
