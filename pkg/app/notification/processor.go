package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize           = 50
	MaxBatchSize               = 100
	DefaultClaimTimeout        = 10 * time.Minute
	DefaultDispatchConcurrency = 4
)

const (
	OutcomeSent      = "sent"
	OutcomeRetried   = "retried"
	OutcomeExhausted = "exhausted"
	// OutcomeUnpersisted means the attempt ran but its result was not stored;
	// the job stays claimed until a stale-claim requeue releases it.
	OutcomeUnpersisted = "unpersisted"
)

// DispatcherLocator returns the dispatcher for a channel. It never returns
// nil; unknown channels get a dispatcher that always fails.
type DispatcherLocator interface {
	Dispatcher(channel domain.Channel) domain.Dispatcher
}

type Recorder interface {
	RecordDispatch(channel domain.Channel, outcome string, elapsed time.Duration)
	RecordRun(result RunResult, elapsed time.Duration)
}

type ProcessorConfig struct {
	BatchSize           int
	MaxBatchSize        int
	BaseDelay           time.Duration
	ClaimTimeout        time.Duration
	DispatchConcurrency int
}

func (c ProcessorConfig) withDefaults() ProcessorConfig {
	if c.MaxBatchSize <= 0 || c.MaxBatchSize > MaxBatchSize {
		c.MaxBatchSize = MaxBatchSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	c.BatchSize = min(c.BatchSize, c.MaxBatchSize)
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.ClaimTimeout < 0 {
		c.ClaimTimeout = 0
	} else if c.ClaimTimeout == 0 {
		c.ClaimTimeout = DefaultClaimTimeout
	}
	if c.DispatchConcurrency <= 0 {
		c.DispatchConcurrency = DefaultDispatchConcurrency
	}
	return c
}

type RunResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Retried   int `json:"retried"`
	Exhausted int `json:"exhausted"`
	// Unpersisted counts attempts whose outcome could not be stored. These
	// jobs may be dispatched again after their claim expires.
	Unpersisted int      `json:"unpersisted"`
	Requeued    int64    `json:"requeued"`
	Errors      []string `json:"errors"`
}

type Processor interface {
	// Run claims and drives one batch of due jobs. A non-nil error means the
	// job store could not be reached and nothing was claimed.
	Run(ctx context.Context, batchSize int) (RunResult, error)
}

type ProcessorOption func(*processor)

func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *processor) {
		p.now = now
	}
}

func WithOutcomeExporter(exporter domain.OutcomeExporter) ProcessorOption {
	return func(p *processor) {
		p.exporter = exporter
	}
}

func WithProcessorRecorder(r Recorder) ProcessorOption {
	return func(p *processor) {
		p.recorder = r
	}
}

type processor struct {
	logger      *logrus.Logger
	store       domain.JobStore
	contacts    domain.ContactResolver
	dispatchers DispatcherLocator
	cfg         ProcessorConfig
	backoff     Backoff
	exporter    domain.OutcomeExporter
	recorder    Recorder
	now         func() time.Time
}

func NewProcessor(
	logger *logrus.Logger,
	store domain.JobStore,
	contacts domain.ContactResolver,
	dispatchers DispatcherLocator,
	cfg ProcessorConfig,
	opts ...ProcessorOption,
) Processor {
	cfg = cfg.withDefaults()
	p := &processor{
		logger:      logger,
		store:       store,
		contacts:    contacts,
		dispatchers: dispatchers,
		cfg:         cfg,
		backoff:     Backoff{Base: cfg.BaseDelay},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type jobOutcome struct {
	kind string
	errs []string
}

func (p *processor) Run(ctx context.Context, batchSize int) (RunResult, error) {
	started := time.Now()
	result := RunResult{Errors: []string{}}

	if batchSize <= 0 {
		batchSize = p.cfg.BatchSize
	}
	batchSize = min(batchSize, p.cfg.MaxBatchSize)

	now := p.now()
	if p.cfg.ClaimTimeout > 0 {
		requeued, err := p.store.RequeueStale(ctx, now.Add(-p.cfg.ClaimTimeout))
		if err != nil {
			p.logger.WithError(err).Warn("failed to requeue stale claims")
			result.Errors = append(result.Errors, fmt.Sprintf("requeue stale claims: %v", err))
		} else if requeued > 0 {
			p.logger.WithField("requeued", requeued).Warn("requeued jobs with expired claims")
		}
		result.Requeued = requeued
	}

	jobs, err := p.store.ClaimDue(ctx, now, batchSize)
	if err != nil {
		p.logger.WithError(err).Error("failed to claim due notification jobs")
		return result, fmt.Errorf("failed to claim due jobs: %w", err)
	}

	// a claimed batch is driven to completion even if the trigger goes away
	workCtx := context.WithoutCancel(ctx)
	outcomes := make([]jobOutcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(p.cfg.DispatchConcurrency)
	for i := range jobs {
		g.Go(func() error {
			outcomes[i] = p.process(workCtx, &jobs[i])
			return nil
		})
	}
	_ = g.Wait()

	result.Processed = len(jobs)
	for _, o := range outcomes {
		switch o.kind {
		case OutcomeSent:
			result.Succeeded++
		case OutcomeRetried:
			result.Failed++
			result.Retried++
		case OutcomeExhausted:
			result.Failed++
			result.Exhausted++
		case OutcomeUnpersisted:
			result.Unpersisted++
		}
		result.Errors = append(result.Errors, o.errs...)
	}

	elapsed := time.Since(started)
	if p.recorder != nil {
		p.recorder.RecordRun(result, elapsed)
	}
	p.logger.WithFields(logrus.Fields{
		"processed":   result.Processed,
		"succeeded":   result.Succeeded,
		"retried":     result.Retried,
		"exhausted":   result.Exhausted,
		"unpersisted": result.Unpersisted,
		"requeued":    result.Requeued,
		"elapsed":     elapsed.String(),
	}).Info("notification batch processed")
	return result, nil
}

func (p *processor) process(ctx context.Context, job *domain.Job) jobOutcome {
	started := time.Now()
	log := p.logger.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"channel":  job.Channel,
		"attempts": job.Attempts,
	})

	res := p.dispatch(ctx, job)
	completedAt := p.now()

	var out jobOutcome
	var stateErr error
	if res.Success {
		out.kind = OutcomeSent
		stateErr = job.MarkSent(completedAt, res.ExternalID)
	} else {
		reason := res.Err.Error()
		out.errs = append(out.errs, fmt.Sprintf("job %s: %s", job.ID, reason))
		if job.Exhausted() {
			out.kind = OutcomeExhausted
			stateErr = job.MarkFailed(reason)
			log.WithField("error", reason).Warn("notification exhausted its attempts")
		} else {
			out.kind = OutcomeRetried
			retryAt := completedAt.Add(p.backoff.Delay(job.Attempts))
			stateErr = job.MarkRetry(retryAt, reason)
			log.WithFields(logrus.Fields{
				"error":         reason,
				"next_retry_at": retryAt,
			}).Warn("notification dispatch failed, retry scheduled")
		}
	}
	if stateErr != nil {
		log.WithError(stateErr).Error("claimed job is in an unexpected state")
		out.kind = OutcomeUnpersisted
		out.errs = append(out.errs, fmt.Sprintf("job %s: %v", job.ID, stateErr))
		return out
	}

	if err := p.store.Complete(ctx, job); err != nil {
		if errors.Is(err, domain.ErrClaimLost) {
			log.Warn("job claim lost before completion")
		} else {
			log.WithError(err).Error("failed to persist job outcome")
		}
		out.kind = OutcomeUnpersisted
		out.errs = append(out.errs, fmt.Sprintf("job %s: failed to persist outcome: %v", job.ID, err))
		if p.recorder != nil {
			p.recorder.RecordDispatch(job.Channel, out.kind, time.Since(started))
		}
		return out
	}

	if p.recorder != nil {
		p.recorder.RecordDispatch(job.Channel, out.kind, time.Since(started))
	}
	if job.Status.Terminal() && p.exporter != nil {
		if err := p.exporter.Export(ctx, domain.NewOutcomeEvent(job, completedAt)); err != nil {
			log.WithError(err).Warn("failed to export notification outcome")
		}
	}
	return out
}

func (p *processor) dispatch(ctx context.Context, job *domain.Job) domain.Result {
	var dispatcher domain.Dispatcher
	if p.dispatchers != nil {
		dispatcher = p.dispatchers.Dispatcher(job.Channel)
	}
	if dispatcher == nil {
		return domain.Failed(domain.NewChannelNotImplemented(job.Channel))
	}

	destination, derr := resolveDestination(ctx, p.contacts, job)
	if derr != nil {
		return domain.Failed(derr)
	}

	var enc domain.ValueEncoder
	if e, ok := dispatcher.(domain.ValueEncoder); ok {
		enc = e
	}
	msg := domain.Message{
		JobID:       job.ID,
		UserID:      job.Recipient.UserID,
		Destination: destination,
		Subject:     Render(job.Subject, job.Data),
		Body:        RenderEncoded(job.Body, job.Data, enc),
	}

	res := dispatcher.Dispatch(ctx, msg)
	if !res.Success && res.Err == nil {
		res.Err = domain.NewProviderRejected("%s dispatcher reported failure without a reason", job.Channel)
	}
	return res
}
