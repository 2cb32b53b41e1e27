package notification

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalTransition = errors.New("illegal job status transition")
	ErrAttemptsExhausted = errors.New("job attempts exhausted")
	// ErrClaimLost is returned when a job changed under a claim, for example
	// after a stale-claim requeue handed it to another run.
	ErrClaimLost = errors.New("job claim lost")
)

type DispatchErrorKind string

const (
	DestinationUnresolved DispatchErrorKind = "DestinationUnresolved"
	ProviderRejected      DispatchErrorKind = "ProviderRejected"
	ChannelNotImplemented DispatchErrorKind = "ChannelNotImplemented"
)

// DispatchError is a delivery failure. Every kind is retried the same way.
type DispatchError struct {
	Kind   DispatchErrorKind
	Reason string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func NewDestinationUnresolved(format string, args ...interface{}) *DispatchError {
	return &DispatchError{Kind: DestinationUnresolved, Reason: fmt.Sprintf(format, args...)}
}

func NewProviderRejected(format string, args ...interface{}) *DispatchError {
	return &DispatchError{Kind: ProviderRejected, Reason: fmt.Sprintf(format, args...)}
}

func NewChannelNotImplemented(channel Channel) *DispatchError {
	return &DispatchError{Kind: ChannelNotImplemented, Reason: fmt.Sprintf("channel %s is not implemented", channel)}
}
