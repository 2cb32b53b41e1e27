package http

import (
	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	appRatelimit "github.com/bazaarly/backbone/pkg/app/ratelimit"
	"github.com/bazaarly/backbone/pkg/domain/identity"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/handlers/http/request"
	"github.com/bazaarly/backbone/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// channelPolicies names the send quota applied per channel. Channels absent
// from the map are not throttled at enqueue time.
var channelPolicies = map[string]string{
	string(notification.ChannelEmail): appRatelimit.PolicyEmailSend,
	string(notification.ChannelSMS):   appRatelimit.PolicySMSSend,
}

type enqueueNotificationHandler struct {
	logger   *logrus.Logger
	enqueuer appNotification.Enqueuer
	limiter  appRatelimit.Limiter
	policies *appRatelimit.PolicyTable
}

func NewEnqueueNotificationHandler(
	logger *logrus.Logger,
	enqueuer appNotification.Enqueuer,
	limiter appRatelimit.Limiter,
	policies *appRatelimit.PolicyTable,
) Handler {
	return &enqueueNotificationHandler{
		logger:   logger,
		enqueuer: enqueuer,
		limiter:  limiter,
		policies: policies,
	}
}

// Handle @Summary Enqueue a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body request.EnqueueNotificationRequest true "Notification"
// @Success 201 {object} notification.Job
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 429 {object} map[string]interface{} "Rate limit exceeded"
// @Router /api/v1/notifications [post]
func (h *enqueueNotificationHandler) Handle(c *fiber.Ctx) error {
	caller := middleware.CallerFrom(c)
	if caller.Kind() == identity.KindAnonymous {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var req request.EnqueueNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to bind notification request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return handleError(c, h.logger, err, "failed to enqueue notification")
	}

	if name, ok := channelPolicies[req.Channel]; ok && h.policies != nil {
		if policy, found := h.policies.Get(name); found {
			decision := h.limiter.CheckPolicy(c.UserContext(), caller.RateLimitIdentifier(), policy)
			if !middleware.WriteRateLimitHeaders(c, decision) {
				h.logger.WithFields(logrus.Fields{
					"key":     decision.Key,
					"channel": req.Channel,
				}).Info("notification send rate limited")
				return middleware.RateLimited(c, decision)
			}
		}
	}

	job, err := h.enqueuer.Enqueue(c.UserContext(), req.ToCommand())
	if err != nil {
		return handleError(c, h.logger, err, "failed to enqueue notification")
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}
