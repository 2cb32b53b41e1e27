package http

import (
	"github.com/bazaarly/backbone/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getVersionHandler struct {
	logger *logrus.Logger
}

func NewGetVersionHandler(logger *logrus.Logger) Handler {
	return &getVersionHandler{
		logger: logger,
	}
}

// Handle @Summary Get service version
// @Tags Version
// @Produce json
// @Success 200 {object} version.Info
// @Router /version [get]
func (h *getVersionHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(version.GetInfo())
}
