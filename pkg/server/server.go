package server

import (
	"time"

	"github.com/bazaarly/backbone/pkg/config"
	"github.com/bazaarly/backbone/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const AdminHealthPath = "/__/health"

type Server interface {
	Run() error
	Shutdown() error
}

type BaseServer struct {
	Config *config.Config
	Logger *logrus.Logger
	Router *fiber.App
}

func NewBaseServer(config *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Network:               fiber.NetworkTCP,
		BodyLimit:             1 * 1024 * 1024,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})
	r.Server().NoDefaultServerHeader = true

	return &BaseServer{
		Config: config,
		Logger: logger,
		Router: r,
	}
}

// setupAdminHealthCheck serves the unthrottled liveness probe used by the orchestrator.
func (s *BaseServer) setupAdminHealthCheck() {
	s.Router.Get(AdminHealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}

func (s *BaseServer) WithRouters(routers ...router.ServerRouter) *BaseServer {
	for _, r := range routers {
		if err := r.BuildRoutes(s.Router); err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

func (s *BaseServer) Shutdown() error {
	return s.Router.Shutdown()
}
