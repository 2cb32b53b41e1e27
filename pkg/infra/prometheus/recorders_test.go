package prometheus

import (
	"testing"
	"time"

	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLimiterRecorder(t *testing.T) {
	r := LimiterRecorder{}
	before := testutil.ToFloat64(RateLimitDecisions.WithLabelValues("login", "durable", "denied"))
	failOpenBefore := testutil.ToFloat64(RateLimitFailOpen.WithLabelValues("login", "durable"))

	r.RecordDecision("login", ratelimit.BackendDurable, ratelimit.Decision{Allowed: false})
	r.RecordDecision("login", ratelimit.BackendDurable, ratelimit.Decision{Allowed: true, Degraded: true})

	assert.Equal(t, before+1, testutil.ToFloat64(RateLimitDecisions.WithLabelValues("login", "durable", "denied")))
	assert.Equal(t, failOpenBefore+1, testutil.ToFloat64(RateLimitFailOpen.WithLabelValues("login", "durable")))
}

func TestQueueRecorder(t *testing.T) {
	r := QueueRecorder{}
	sentBefore := testutil.ToFloat64(QueueJobs.WithLabelValues("sent"))
	unpersistedBefore := testutil.ToFloat64(QueueJobs.WithLabelValues("unpersisted"))
	dispatchBefore := testutil.ToFloat64(NotificationDispatches.WithLabelValues("sms", "retried"))

	r.RecordDispatch(notification.ChannelSMS, appNotification.OutcomeRetried, 12*time.Millisecond)
	r.RecordRun(appNotification.RunResult{Succeeded: 3, Retried: 1, Unpersisted: 2}, time.Second)

	assert.Equal(t, dispatchBefore+1, testutil.ToFloat64(NotificationDispatches.WithLabelValues("sms", "retried")))
	assert.Equal(t, sentBefore+3, testutil.ToFloat64(QueueJobs.WithLabelValues("sent")))
	assert.Equal(t, unpersistedBefore+2, testutil.ToFloat64(QueueJobs.WithLabelValues("unpersisted")))
}

func TestInitializeIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Initialize()
		Initialize()
	})
	families, err := Gatherer().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
