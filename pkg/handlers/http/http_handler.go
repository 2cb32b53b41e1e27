package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	GetVersionHandler Handler

	// Notifications
	EnqueueNotificationHandler Handler
	GetNotificationHandler     Handler

	// Queue
	RunQueueHandler Handler

	// Rate limits
	CheckRateLimitHandler Handler
}
