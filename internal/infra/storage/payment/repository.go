package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const table = "payments"

var columns = []string{
	"id",
	"reference",
	"appointment_id",
	"method",
	"base_amount_cents",
	"gross_amount_cents",
	"amount_overridden",
	"adjustment_cents",
	"platform_fee_cents",
	"net_amount_cents",
	"fee_rate_bps",
	"fixed_fee_cents",
	"tendered_cents",
	"change_cents",
	"created_at",
}

// Repository репозиторий оплат. Оплаты неизменяемы: только вставка и чтение.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория оплат
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет оплату. Повторная оплата той же записи
// (ограничение payments_appointment_unique) возвращается как ErrAlreadyExists.
func (r *Repository) Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(columns[1 : len(columns)-1]...).
		Values(
			p.Reference,
			p.AppointmentID,
			p.Method,
			p.BaseAmountCents,
			p.GrossAmountCents,
			p.AmountOverridden,
			p.AdjustmentCents,
			p.PlatformFeeCents,
			p.NetAmountCents,
			p.FeeRateBps,
			p.FixedFeeCents,
			p.TenderedCents,
			p.ChangeCents,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt)
	if pgerr.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: appointment_id=%d", ErrAlreadyExists, p.AppointmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// GetByAppointmentID получает оплату записи
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.Payment
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.Reference,
		&p.AppointmentID,
		&p.Method,
		&p.BaseAmountCents,
		&p.GrossAmountCents,
		&p.AmountOverridden,
		&p.AdjustmentCents,
		&p.PlatformFeeCents,
		&p.NetAmountCents,
		&p.FeeRateBps,
		&p.FixedFeeCents,
		&p.TenderedCents,
		&p.ChangeCents,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - scan payment: %w", ErrScanRow, err)
	}

	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
