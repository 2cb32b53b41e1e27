package prometheus

import (
	"strconv"
	"time"

	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	appRatelimit "github.com/bazaarly/backbone/pkg/app/ratelimit"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/domain/ratelimit"
)

type LimiterRecorder struct{}

var _ appRatelimit.Recorder = LimiterRecorder{}

func (LimiterRecorder) RecordDecision(endpoint string, backend ratelimit.Backend, d ratelimit.Decision) {
	outcome := "allowed"
	switch {
	case d.Degraded:
		outcome = "degraded"
		RateLimitFailOpen.WithLabelValues(endpoint, string(backend)).Inc()
	case !d.Allowed:
		outcome = "denied"
	}
	RateLimitDecisions.WithLabelValues(endpoint, string(backend), outcome).Inc()
}

type QueueRecorder struct{}

var _ appNotification.Recorder = QueueRecorder{}

func (QueueRecorder) RecordDispatch(channel notification.Channel, outcome string, elapsed time.Duration) {
	NotificationDispatches.WithLabelValues(string(channel), outcome).Inc()
	NotificationDispatchLatency.WithLabelValues(string(channel)).Observe(float64(elapsed.Milliseconds()))
}

func (QueueRecorder) RecordRun(result appNotification.RunResult, elapsed time.Duration) {
	QueueRuns.WithLabelValues("completed").Inc()
	QueueRunLatency.Observe(float64(elapsed.Milliseconds()))
	QueueJobs.WithLabelValues("sent").Add(float64(result.Succeeded))
	QueueJobs.WithLabelValues("retried").Add(float64(result.Retried))
	QueueJobs.WithLabelValues("exhausted").Add(float64(result.Exhausted))
	QueueJobs.WithLabelValues("unpersisted").Add(float64(result.Unpersisted))
	QueueJobs.WithLabelValues("requeued").Add(float64(result.Requeued))
}

func RecordHTTPRequest(route, method string, status int) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}
