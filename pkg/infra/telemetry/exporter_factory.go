package telemetry

import (
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/infra/telemetry/kafka"
	"github.com/sirupsen/logrus"
)

type ExporterConfig struct {
	KafkaEnabled bool
	Kafka        kafka.Config
}

// NewOutcomeExporter returns the configured exporter. A Kafka exporter that
// cannot be created degrades to the no-op exporter.
func NewOutcomeExporter(logger *logrus.Logger, cfg ExporterConfig) notification.OutcomeExporter {
	if !cfg.KafkaEnabled {
		return NoopExporter{}
	}
	exp, err := kafka.NewKafkaExporter(cfg.Kafka)
	if err != nil {
		logger.WithError(err).Error("kafka outcome exporter unavailable, events will be dropped")
		return NoopExporter{}
	}
	logger.WithField("topic", cfg.Kafka.Topic).Info("publishing notification outcomes to kafka")
	return exp
}
