package middleware

import (
	"github.com/bazaarly/backbone/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
)

type metricsMiddleware struct{}

func NewMetricsMiddleware() Middleware {
	return &metricsMiddleware{}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		prometheus.RecordHTTPRequest(route, c.Method(), status)
		return err
	}
}
