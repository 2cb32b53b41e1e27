package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

type Transport struct {
	PanicRecoverMiddleware   Middleware
	MetricsMiddleware        Middleware
	CallerIdentityMiddleware Middleware
	QueueTriggerMiddleware   Middleware
	// RateLimit builds a limiter middleware for one named policy.
	RateLimit func(policy string) Middleware
}
