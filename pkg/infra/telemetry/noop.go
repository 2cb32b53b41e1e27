package telemetry

import (
	"context"

	"github.com/bazaarly/backbone/pkg/domain/notification"
)

// NoopExporter drops outcome events.
type NoopExporter struct{}

func (NoopExporter) Export(context.Context, notification.OutcomeEvent) error { return nil }
func (NoopExporter) Close()                                                  {}
