// Package kafka публикует outbox-события в Kafka
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ErrPublish возвращается, когда брокер не принял пачку сообщений
var ErrPublish = errors.New("kafka producer: publish failed")

const (
	headerEventID   = "event_id"
	headerEventType = "event_type"

	defaultWriteTimeout = 10 * time.Second
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MessageWriter часть kafka.Writer, которую использует продюсер
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer синхронный продюсер: Publish возвращается после подтверждения всеми репликами
type Producer struct {
	writer MessageWriter
	logger Logger
}

// NewProducer создает продюсер для топика topic
func NewProducer(brokers []string, topic string, logger Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		WriteTimeout: defaultWriteTimeout,
		RequiredAcks: kafkago.RequireAll,
		MaxAttempts:  3,
		ErrorLogger:  kafkago.LoggerFunc(logger.Error),
	}

	logger.Info("Kafka producer initialized: brokers=%v, topic=%s", brokers, topic)
	return NewProducerWithWriter(writer, logger)
}

// NewProducerWithWriter создает продюсер поверх готового writer
func NewProducerWithWriter(writer MessageWriter, logger Logger) *Producer {
	return &Producer{writer: writer, logger: logger}
}

// Publish отправляет события одной пачкой.
// Ключ сообщения ID агрегата, поэтому события одной записи попадают в одну партицию по порядку.
func (p *Producer) Publish(ctx context.Context, events []domain.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, toMessage(e))
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%w: %d messages: %v", ErrPublish, len(msgs), err)
	}
	return nil
}

// Close закрывает writer
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka producer: %v", err)
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}

func toMessage(e domain.OutboxEvent) kafkago.Message {
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%s-%d", e.AggregateType, e.AggregateID)),
		Value: e.Payload,
		Time:  e.CreatedAt,
		Headers: []kafkago.Header{
			{Key: headerEventID, Value: []byte(e.ID.String())},
			{Key: headerEventType, Value: []byte(e.EventType)},
		},
	}
}
