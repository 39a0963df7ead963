package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/usecase"
)

// Module exposes the event publisher to fx graph.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

var newSyncProducer = sarama.NewSyncProducer

func newPublisher(p publisherParams) (usecase.EventPublisher, error) {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("kafka brokers not configured, order events disabled")
		return NoopPublisher{}, nil
	}

	producer, err := newSyncProducer(p.Config.KafkaBrokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	publisher := NewKafkaPublisher(producer, p.Config.KafkaTopic, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}
