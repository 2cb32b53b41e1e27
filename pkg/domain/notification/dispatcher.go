package notification

import (
	"context"

	"github.com/google/uuid"
)

// Message is a rendered notification ready for one channel.
type Message struct {
	JobID       uuid.UUID
	UserID      *uuid.UUID
	Destination string
	Subject     string
	Body        string
}

type Result struct {
	Success    bool
	ExternalID string
	Err        *DispatchError
}

func Delivered(externalID string) Result {
	return Result{Success: true, ExternalID: externalID}
}

func Failed(err *DispatchError) Result {
	return Result{Err: err}
}

// Dispatcher delivers a message over one channel. Provider failures are
// reported in the Result, never as a panic.
type Dispatcher interface {
	Channel() Channel
	Dispatch(ctx context.Context, msg Message) Result
}

// ValueEncoder is implemented by dispatchers that embed template values in
// markup and need them encoded before rendering.
type ValueEncoder interface {
	EncodeValue(raw string) string
}
