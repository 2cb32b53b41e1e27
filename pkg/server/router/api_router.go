package router

import (
	"errors"
	"time"

	appRatelimit "github.com/bazaarly/backbone/pkg/app/ratelimit"
	handlers "github.com/bazaarly/backbone/pkg/handlers/http"
	"github.com/bazaarly/backbone/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

const (
	HealthPath  = "/health"
	VersionPath = "/version"
)

var ErrIncompleteTransport = errors.New("incomplete middleware or handler transport")

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	mt, ht := r.middlewareTransport, r.handlerTransport
	if mt == nil || ht == nil || mt.RateLimit == nil {
		return ErrIncompleteTransport
	}

	router.Use(
		mt.PanicRecoverMiddleware.Middleware(),
		mt.MetricsMiddleware.Middleware(),
		mt.CallerIdentityMiddleware.Middleware(),
	)

	router.Get(VersionPath, ht.GetVersionHandler.Handle)
	router.Get(HealthPath, mt.RateLimit(appRatelimit.PolicyHealthProbe).Middleware(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/api/v1")
	{
		notifications := v1.Group("/notifications")
		{
			notifications.Post("", ht.EnqueueNotificationHandler.Handle)
			notifications.Get("/:job_id", ht.GetNotificationHandler.Handle)
		}

		v1.Post("/queue/run", mt.QueueTriggerMiddleware.Middleware(), ht.RunQueueHandler.Handle)
		v1.Post("/rate-limits/check", ht.CheckRateLimitHandler.Handle)
	}
	return nil
}
