// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/IBM/sarama"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// KafkaPublisher writes events keyed by order id so one order stays on one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaPublisher wraps an existing producer.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// NewProducerConfig returns the producer settings used in production.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = "routeshop"
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	return cfg
}

// Publish sends the event and waits for the broker acknowledgement.
func (p *KafkaPublisher) Publish(_ context.Context, event model.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.OrderID, 10)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("%w: publish %s: %v", domainErrors.ErrExternalService, event.Type, err)
	}

	p.logger.Debug("order event published",
		slog.String("type", event.Type),
		slog.Int64("order_id", event.OrderID),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// Close releases the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events when no brokers are configured.
type NoopPublisher struct{}

// Publish implements usecase.EventPublisher.
func (NoopPublisher) Publish(context.Context, model.OrderEvent) error { return nil }
