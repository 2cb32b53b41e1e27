package http

import (
	"github.com/bazaarly/backbone/pkg/domain/identity"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type getNotificationHandler struct {
	logger *logrus.Logger
	store  notification.JobStore
}

func NewGetNotificationHandler(logger *logrus.Logger, store notification.JobStore) Handler {
	return &getNotificationHandler{
		logger: logger,
		store:  store,
	}
}

// Handle @Summary Retrieve a notification job
// @Tags Notifications
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param job_id path string true "Job ID"
// @Success 200 {object} notification.Job
// @Failure 401 {object} map[string]interface{} "Authentication required"
// @Failure 403 {object} map[string]interface{} "Job belongs to another user"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /api/v1/notifications/{job_id} [get]
func (h *getNotificationHandler) Handle(c *fiber.Ctx) error {
	caller := middleware.CallerFrom(c)
	if caller.Kind() == identity.KindAnonymous {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job_id"})
	}

	job, err := h.store.GetByID(c.UserContext(), jobID)
	if err != nil {
		return handleError(c, h.logger, err, "failed to get notification")
	}
	if !canReadJob(caller, job) {
		h.logger.WithFields(logrus.Fields{
			"job_id": job.ID,
			"caller": caller.RateLimitIdentifier(),
		}).Debug("notification read denied")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "notification belongs to another user"})
	}
	return c.Status(fiber.StatusOK).JSON(job)
}

// canReadJob allows services and admins to read any job, and users to read
// jobs addressed to their own account.
func canReadJob(caller identity.Caller, job *notification.Job) bool {
	switch c := caller.(type) {
	case identity.ServiceCaller:
		return true
	case identity.AuthenticatedUser:
		if c.HasRole(identity.AdminRole) {
			return true
		}
		return job.Recipient.UserID != nil && job.Recipient.UserID.String() == c.Identifier
	default:
		return false
	}
}
