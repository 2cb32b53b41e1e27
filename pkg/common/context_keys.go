package common

type contextKey string

const (
	CallerContextKey    contextKey = "caller"
	RequestIDContextKey contextKey = "request_id"
	LatencyContextKey   contextKey = "__execution_time"
)
