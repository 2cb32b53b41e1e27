package http

import (
	"strconv"

	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type runQueueHandler struct {
	logger    *logrus.Logger
	processor appNotification.Processor
}

func NewRunQueueHandler(logger *logrus.Logger, processor appNotification.Processor) Handler {
	return &runQueueHandler{
		logger:    logger,
		processor: processor,
	}
}

// Handle @Summary Process one batch of due notifications
// @Tags Queue
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param batch_size query int false "Jobs to claim, capped by the configured maximum"
// @Success 200 {object} notification.RunResult
// @Router /api/v1/queue/run [post]
func (h *runQueueHandler) Handle(c *fiber.Ctx) error {
	batchSize := 0
	if raw := c.Query("batch_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "batch_size must be a non-negative integer"})
		}
		batchSize = n
	}

	result, err := h.processor.Run(c.UserContext(), batchSize)
	if err != nil {
		h.logger.WithError(err).Error("queue run failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "queue run failed"})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
