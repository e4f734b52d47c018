package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const table = "outbox_events"

// Repository хранилище outbox-событий.
// Add вызывается внутри транзакции usecase, поэтому событие фиксируется
// вместе с изменением, которое оно описывает.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Add сохраняет событие со статусом pending
func (r *Repository) Add(ctx context.Context, aggregateType string, aggregateID int64, eventType string, payload interface{}) (uuid.UUID, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMarshalPayload, err)
	}

	id := uuid.New()
	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status").
		Values(id, aggregateType, aggregateID, eventType, data, domain.OutboxStatusPending).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: Add - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return uuid.Nil, fmt.Errorf("%w: Add - execute insert: %w", ErrExecQuery, err)
	}
	return id, nil
}

// FetchPending возвращает до limit неотправленных событий в порядке создания.
// Внутри транзакции строки блокируются с SKIP LOCKED, поэтому несколько
// экземпляров relay не отправляют одно событие дважды.
func (r *Repository) FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at").
		From(table).
		Where(squirrel.Eq{"status": domain.OutboxStatusPending}).
		OrderBy("created_at ASC").
		Limit(uint64(limit))
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]domain.OutboxEvent, 0)
	for rows.Next() {
		var e domain.OutboxEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &payload, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchPending - scan event: %w", ErrScanRow, err)
		}
		e.Payload = append(json.RawMessage(nil), payload...)
		e.CreatedAt = e.CreatedAt.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchPending - rows error: %w", ErrScanRow, err)
	}
	return events, nil
}

// MarkSent помечает события отправленными
func (r *Repository) MarkSent(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.OutboxStatusSent).
		Set("sent_at", at.UTC()).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkSent - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkSent - execute update: %w", ErrExecQuery, err)
	}
	return nil
}
