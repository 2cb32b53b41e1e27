package notification

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// transitions lists every legal move of the delivery state machine.
// processing -> pending covers both a retryable failure and a stale claim requeue.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusSent, StatusPending, StatusFailed},
	StatusSent:       nil,
	StatusFailed:     nil,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown job status %q", s)
	}
	return st, nil
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}
