package channels

import (
	"context"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
)

// UnimplementedDispatcher stands in for a channel with no provider.
type UnimplementedDispatcher struct {
	channel domain.Channel
}

func NewUnimplementedDispatcher(channel domain.Channel) *UnimplementedDispatcher {
	return &UnimplementedDispatcher{channel: channel}
}

func (d *UnimplementedDispatcher) Channel() domain.Channel {
	return d.channel
}

func (d *UnimplementedDispatcher) Dispatch(context.Context, domain.Message) domain.Result {
	return domain.Failed(domain.NewChannelNotImplemented(d.channel))
}
