package settle_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/checkout"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	paymentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/payment"
)

// UseCase use case оплаты записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	paymentRepo     PaymentRepository
	outboxRepo      OutboxRepository
	feePolicy       checkout.FeePolicy
	txManager       TransactionManager
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	feePolicy checkout.FeePolicy,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		paymentRepo:     paymentRepo,
		outboxRepo:      outboxRepo,
		feePolicy:       feePolicy,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case оплаты.
// Оплата, перевод записи в completed и события outbox фиксируются одной сериализуемой транзакцией.
// Уникальность payments.appointment_id гарантирует не более одной оплаты при гонке.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SettleAppointment: id=%d, method=%s", req.AppointmentID, req.Method)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SettleAppointment: validation failed: %v", err)
		return nil, err
	}

	var (
		payment     *domain.Payment
		appointment *domain.Appointment
	)

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем запись с блокировкой (FOR UPDATE)
		a, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("SettleAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("SettleAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
		}

		// 2.2. Оплата существует - запись уже рассчитана
		existing, err := uc.paymentRepo.GetByAppointmentID(txCtx, a.ID)
		if err != nil && !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			uc.logger.Error("SettleAppointment: failed to get payment for id=%d: %v", a.ID, err)
			return fmt.Errorf("%w: failed to get payment: %w", ErrInternal, err)
		}
		if existing != nil {
			uc.logger.Warn("SettleAppointment: id=%d already settled by payment id=%d", a.ID, existing.ID)
			return ErrAlreadySettled
		}

		// 2.3. Рассчитать можно только подтвержденную запись
		if a.Status != domain.StatusConfirmed {
			uc.logger.Warn("SettleAppointment: id=%d has status %s", a.ID, a.Status)
			return fmt.Errorf("%w: status is %s", ErrNotCheckoutEligible, a.Status)
		}

		// 2.4. Считаем комиссию от зафиксированной цены
		breakdown, err := uc.feePolicy.Compute(a.PriceCents, req.AmountOverrideCents, req.Method, req.TenderedCents)
		if err != nil {
			uc.logger.Warn("SettleAppointment: id=%d, fee computation rejected: %v", a.ID, err)
			return mapComputeError(err)
		}

		// 2.5. Сохраняем оплату
		p := newPayment(a.ID, req.Method, breakdown, uc.feePolicy)
		p.Reference = uuid.New()
		created, err := uc.paymentRepo.Create(txCtx, p)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrAlreadyExists) {
				uc.logger.Warn("SettleAppointment: id=%d settled concurrently", a.ID)
				return ErrAlreadySettled
			}
			uc.logger.Error("SettleAppointment: failed to create payment: %v", err)
			return fmt.Errorf("%w: failed to create payment: %w", ErrInternal, err)
		}

		// 2.6. Завершаем запись
		if err := uc.appointmentRepo.UpdateStatus(txCtx, a.ID, domain.StatusConfirmed, domain.StatusCompleted); err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusMismatch) {
				return fmt.Errorf("%w: status changed concurrently", ErrNotCheckoutEligible)
			}
			uc.logger.Error("SettleAppointment: failed to complete id=%d: %v", a.ID, err)
			return fmt.Errorf("%w: failed to complete appointment: %w", ErrInternal, err)
		}
		a.Status = domain.StatusCompleted
		a.UpdatedAt = uc.timeProvider.Now().UTC()

		// 2.7. События для уведомлений и выплат
		if _, err := uc.outboxRepo.Add(txCtx, domain.AggregatePayment, created.ID, domain.EventPaymentSettled, domain.PaymentEventPayload{
			PaymentID:        created.ID,
			Reference:        created.Reference,
			AppointmentID:    a.ID,
			BusinessID:       a.BusinessID,
			Method:           created.Method,
			GrossAmountCents: created.GrossAmountCents,
			PlatformFeeCents: created.PlatformFeeCents,
			NetAmountCents:   created.NetAmountCents,
		}); err != nil {
			uc.logger.Error("SettleAppointment: failed to add outbox event: %v", err)
			return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
		}
		if _, err := uc.outboxRepo.Add(txCtx, domain.AggregateAppointment, a.ID, domain.EventAppointmentCompleted,
			domain.NewAppointmentEventPayload(a)); err != nil {
			uc.logger.Error("SettleAppointment: failed to add outbox event: %v", err)
			return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
		}

		payment = created
		appointment = a
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.metrics.Settled(string(payment.Method), payment.PlatformFeeCents)
	uc.metrics.StatusTransition(string(domain.StatusCompleted))
	uc.logger.Info("SettleAppointment: id=%d settled, payment=%d, gross=%d, fee=%d, net=%d",
		appointment.ID, payment.ID, payment.GrossAmountCents, payment.PlatformFeeCents, payment.NetAmountCents)

	return &Response{Payment: payment, Appointment: appointment}, nil
}
