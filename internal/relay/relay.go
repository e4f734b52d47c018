// Package relay переносит outbox-события из PostgreSQL в брокер сообщений
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	resultSent   = "sent"
	resultFailed = "failed"

	DefaultPollInterval = time.Second
	DefaultBatchSize    = 100
)

// OutboxRepository интерфейс репозитория outbox
type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkSent(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Publisher интерфейс брокера
type Publisher interface {
	Publish(ctx context.Context, events []domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder счетчики отправки
type MetricsRecorder interface {
	OutboxResult(result string, n int)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// Relay периодически публикует pending-события.
// Доставка at-least-once: если MarkSent не зафиксировался, пачка уйдет повторно.
type Relay struct {
	repo         OutboxRepository
	publisher    Publisher
	txManager    TransactionManager
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
	pollInterval time.Duration
	batchSize    int
}

// NewRelay создает relay. Неположительные interval и batchSize заменяются значениями по умолчанию.
func NewRelay(
	repo OutboxRepository,
	publisher Publisher,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
	pollInterval time.Duration,
	batchSize int,
) *Relay {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Relay{
		repo:         repo,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: realTimeProvider{},
		logger:       logger,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Run обрабатывает пачки до отмены ctx
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("Outbox relay started: interval=%s, batch=%d", r.pollInterval, r.batchSize)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopped")
			return nil
		case <-ticker.C:
			// Пока пачки полные, разбираем очередь без ожидания тика
			for {
				n, err := r.ProcessBatch(ctx)
				if err != nil {
					r.logger.Error("Outbox relay: batch failed: %v", err)
					break
				}
				if n < r.batchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// ProcessBatch публикует одну пачку и возвращает число отправленных событий.
// Строки заблокированы (SKIP LOCKED) до фиксации транзакции.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	var sent int

	err := r.txManager.Do(ctx, func(txCtx context.Context) error {
		events, err := r.repo.FetchPending(txCtx, r.batchSize)
		if err != nil {
			return fmt.Errorf("fetch pending: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		if err := r.publisher.Publish(txCtx, events); err != nil {
			r.metrics.OutboxResult(resultFailed, len(events))
			return fmt.Errorf("publish %d events: %w", len(events), err)
		}

		ids := make([]uuid.UUID, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		if err := r.repo.MarkSent(txCtx, ids, r.timeProvider.Now()); err != nil {
			r.logger.Warn("Outbox relay: %d events published but not marked sent, they will be redelivered", len(ids))
			return fmt.Errorf("mark sent: %w", err)
		}

		sent = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if sent > 0 {
		r.metrics.OutboxResult(resultSent, sent)
	}
	return sent, nil
}
