package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const (
	ExporterName   = "kafka"
	flushTimeoutMs = 5000
)

type Config struct {
	Brokers []string
	Topic   string
}

func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka brokers are required")
	}
	if c.Topic == "" {
		return errors.New("kafka topic is required")
	}
	return nil
}

// producer is the subset of *kafka.Producer the exporter needs.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// Exporter publishes notification outcome events, keyed by job id so a
// job's events stay on one partition.
type Exporter struct {
	cfg      Config
	producer producer
}

func NewKafkaExporter(cfg Config) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": strings.Join(cfg.Brokers, ","),
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Exporter{cfg: cfg, producer: p}, nil
}

func (e *Exporter) Name() string {
	return ExporterName
}

func (e *Exporter) Export(ctx context.Context, evt notification.OutcomeEvent) error {
	if e.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = e.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &e.cfg.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(evt.JobID.String()),
		Value:          data,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(evt.Status)},
			{Key: "channel", Value: []byte(evt.Channel)},
		},
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for kafka delivery: %w", ctx.Err())
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected kafka delivery event %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
	}
	return nil
}

func (e *Exporter) Close() {
	if e.producer != nil {
		e.producer.Flush(flushTimeoutMs)
		e.producer.Close()
	}
}
