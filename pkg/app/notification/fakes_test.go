package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/bazaarly/backbone/pkg/domain/errors"
	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// memoryJobStore mirrors the claim semantics of the postgres job store.
type memoryJobStore struct {
	mu          sync.Mutex
	jobs        map[uuid.UUID]domain.Job
	claimErr    error
	completeErr error
	claims      int
}

func newMemoryJobStore() *memoryJobStore {
	return &memoryJobStore{jobs: make(map[uuid.UUID]domain.Job)}
}

func (s *memoryJobStore) Create(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *memoryJobStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("NotificationJob", id)
	}
	return &job, nil
}

func (s *memoryJobStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims++
	if s.claimErr != nil {
		return nil, s.claimErr
	}

	var due []domain.Job
	for _, job := range s.jobs {
		if job.Due(now) {
			due = append(due, job)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Priority != due[j].Priority {
			return due[i].Priority < due[j].Priority
		}
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	for i := range due {
		if err := due[i].Claim(now); err != nil {
			return nil, err
		}
		s.jobs[due[i].ID] = due[i]
	}
	return due, nil
}

func (s *memoryJobStore) Complete(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return s.completeErr
	}
	current, ok := s.jobs[job.ID]
	if !ok || current.Status != domain.StatusProcessing || current.Attempts != job.Attempts {
		return domain.ErrClaimLost
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *memoryJobStore) RequeueStale(_ context.Context, claimedBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, job := range s.jobs {
		if job.Status != domain.StatusProcessing || job.LastAttemptAt == nil || !job.LastAttemptAt.Before(claimedBefore) {
			continue
		}
		if job.Exhausted() {
			job.Status = domain.StatusFailed
			job.ErrorMessage = "claim expired after final attempt"
		} else {
			job.Status = domain.StatusPending
		}
		job.NextRetryAt = nil
		s.jobs[id] = job
		n++
	}
	return n, nil
}

func (s *memoryJobStore) get(id uuid.UUID) domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

type stubDispatcher struct {
	mu       sync.Mutex
	channel  domain.Channel
	result   domain.Result
	messages []domain.Message
}

func (d *stubDispatcher) Channel() domain.Channel { return d.channel }

func (d *stubDispatcher) Dispatch(_ context.Context, msg domain.Message) domain.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
	return d.result
}

func (d *stubDispatcher) sent() []domain.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Message, len(d.messages))
	copy(out, d.messages)
	return out
}

// encodingDispatcher HTML-escapes template values like the email channel.
type encodingDispatcher struct {
	stubDispatcher
}

func (*encodingDispatcher) EncodeValue(raw string) string {
	return htmlEncoder{}.EncodeValue(raw)
}

type stubLocator map[domain.Channel]domain.Dispatcher

func (l stubLocator) Dispatcher(channel domain.Channel) domain.Dispatcher {
	return l[channel]
}

type stubContacts map[uuid.UUID]domain.Contact

func (c stubContacts) Resolve(_ context.Context, userID uuid.UUID) (*domain.Contact, error) {
	contact, ok := c[userID]
	if !ok {
		return nil, domainErrors.NewNotFoundError("Contact", userID)
	}
	return &contact, nil
}

type recordingExporter struct {
	mu     sync.Mutex
	events []domain.OutcomeEvent
	err    error
}

func (e *recordingExporter) Export(_ context.Context, evt domain.OutcomeEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
	return e.err
}

func (e *recordingExporter) Close() {}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}
