package common

const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"
	RequestIDHeader          = "X-Request-Id"
)
