package server

import (
	"fmt"

	"github.com/bazaarly/backbone/pkg/config"
	"github.com/bazaarly/backbone/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const MetricsPath = "/metrics"

type MetricsServer struct {
	*BaseServer
}

func NewMetricsServer(cfg *config.Config, logger *logrus.Logger) *MetricsServer {
	s := &MetricsServer{BaseServer: NewBaseServer(cfg, logger)}
	s.Router.Use(recover.New())

	handler := fasthttpadaptor.NewFastHTTPHandler(prometheus.Handler())
	s.Router.Get(MetricsPath, func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})
	return s
}

func (s *MetricsServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.MetricsPort)
	s.Logger.WithField("addr", addr).Info("starting metrics server")
	return s.Router.Listen(addr)
}
