package channels

import (
	domain "github.com/bazaarly/backbone/pkg/domain/notification"
)

// Registry maps channels to dispatchers. It is read-only once built.
type Registry struct {
	dispatchers map[domain.Channel]domain.Dispatcher
}

func NewRegistry(dispatchers ...domain.Dispatcher) *Registry {
	r := &Registry{dispatchers: make(map[domain.Channel]domain.Dispatcher, len(dispatchers))}
	for _, d := range dispatchers {
		if d != nil {
			r.dispatchers[d.Channel()] = d
		}
	}
	return r
}

func (r *Registry) Dispatcher(channel domain.Channel) domain.Dispatcher {
	if d, ok := r.dispatchers[channel]; ok {
		return d
	}
	return NewUnimplementedDispatcher(channel)
}

// Implemented lists the channels with a real provider behind them.
func (r *Registry) Implemented() []domain.Channel {
	var out []domain.Channel
	for _, c := range domain.Channels() {
		if _, ok := r.dispatchers[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
