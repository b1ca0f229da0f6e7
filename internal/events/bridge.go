package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBridge mirrors relay emits onto a shared Kafka topic so that a
// multi-instance deployment has a cross-process channel. Publishing is
// best-effort: a failed write is logged and dropped, never retried, and the
// in-process relay delivery has already happened by then.
type KafkaBridge struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaBridge(brokers, topic string, logger *zap.Logger) *KafkaBridge {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaBridge{
		writer: writer,
		logger: logger,
	}
}

func (b *KafkaBridge) Publish(evt OrderEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("failed to marshal order event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.Order.ID),
		Value: data,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		b.logger.Error("failed to publish order event",
			zap.String("event_id", evt.EventID),
			zap.String("order_id", evt.Order.ID),
			zap.Error(err))
		return err
	}

	return nil
}

func (b *KafkaBridge) Close() error {
	if b.writer != nil {
		return b.writer.Close()
	}
	return nil
}
