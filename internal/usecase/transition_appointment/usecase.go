package transition_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	directoryClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/directory"
)

const conflictStageConfirm = "confirm"

// UseCase use case смены статуса записи (подтверждение и отмена)
type UseCase struct {
	appointmentRepo AppointmentRepository
	outboxRepo      OutboxRepository
	directory       DirectoryClient
	engine          Engine
	txManager       TransactionManager
	metrics         MetricsRecorder
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	outboxRepo OutboxRepository,
	directory DirectoryClient,
	engine Engine,
	txManager TransactionManager,
	metrics MetricsRecorder,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		outboxRepo:      outboxRepo,
		directory:       directory,
		engine:          engine,
		txManager:       txManager,
		metrics:         metrics,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case смены статуса.
// pending -> confirmed повторно проверяет слот (без самой записи) в сериализуемой транзакции.
// pending|confirmed -> cancelled разрешен всегда, повторная отмена не меняет запись.
// completed достигается только через оплату.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("TransitionAppointment: id=%d, target=%s", req.AppointmentID, req.TargetStatus)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("TransitionAppointment: validation failed: %v", err)
		return nil, err
	}

	if req.TargetStatus == domain.StatusCompleted {
		uc.logger.Warn("TransitionAppointment: id=%d, completion requested outside checkout", req.AppointmentID)
		return nil, ErrCompleteViaCheckout
	}

	// 2. Читаем запись без блокировки, чтобы до транзакции получить бизнес
	current, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, uc.mapGetError(req.AppointmentID, err)
	}

	var business *domain.Business
	if req.TargetStatus == domain.StatusConfirmed && current.Status == domain.StatusPending {
		business, err = uc.directory.GetBusiness(ctx, current.BusinessID)
		if err != nil {
			if errors.Is(err, directoryClient.ErrBusinessNotFound) {
				uc.logger.Warn("TransitionAppointment: business id=%d not found", current.BusinessID)
				return nil, ErrBusinessNotFound
			}
			uc.logger.Error("TransitionAppointment: failed to get business id=%d: %v", current.BusinessID, err)
			return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
		}
	}

	now := uc.timeProvider.Now()
	var (
		result  *domain.Appointment
		changed bool
	)

	// 3. Меняем статус в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		changed = false

		// 3.1. Перечитываем запись с блокировкой (FOR UPDATE)
		a, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			return uc.mapGetError(req.AppointmentID, err)
		}

		// 3.2. Повторная отмена ничего не меняет
		if req.TargetStatus == domain.StatusCancelled && a.Status == domain.StatusCancelled {
			result = a
			return nil
		}

		if !domain.CanTransition(a.Status, req.TargetStatus) {
			uc.logger.Warn("TransitionAppointment: id=%d, %s -> %s is not allowed", a.ID, a.Status, req.TargetStatus)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, req.TargetStatus)
		}

		switch req.TargetStatus {
		case domain.StatusConfirmed:
			if err := uc.confirm(txCtx, a, business, now); err != nil {
				return err
			}
			a.Status = domain.StatusConfirmed

		case domain.StatusCancelled:
			if err := uc.appointmentRepo.Cancel(txCtx, a.ID, a.Status, req.Reason, now); err != nil {
				if errors.Is(err, appointmentRepo.ErrStatusMismatch) {
					return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
				}
				uc.logger.Error("TransitionAppointment: failed to cancel id=%d: %v", a.ID, err)
				return fmt.Errorf("%w: failed to cancel: %w", ErrInternal, err)
			}
			cancelledAt := now.UTC()
			a.Status = domain.StatusCancelled
			a.CancellationReason = req.Reason
			a.CancelledAt = &cancelledAt
		}
		a.UpdatedAt = now.UTC()

		// 3.3. Событие для уведомлений
		eventType := domain.EventAppointmentConfirmed
		if a.Status == domain.StatusCancelled {
			eventType = domain.EventAppointmentCancelled
		}
		if _, err := uc.outboxRepo.Add(txCtx, domain.AggregateAppointment, a.ID, eventType,
			domain.NewAppointmentEventPayload(a)); err != nil {
			uc.logger.Error("TransitionAppointment: failed to add outbox event: %v", err)
			return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
		}

		result = a
		changed = true
		return nil
	})

	if err != nil {
		return nil, err
	}

	if changed {
		uc.metrics.StatusTransition(string(result.Status))
		uc.logger.Info("TransitionAppointment: id=%d is now %s", result.ID, result.Status)
	} else {
		uc.logger.Info("TransitionAppointment: id=%d already %s, nothing to do", result.ID, result.Status)
	}

	return &Response{Appointment: result, Changed: changed}, nil
}

// confirm повторно проверяет слот pending-записи, исключая её саму
func (uc *UseCase) confirm(txCtx context.Context, a *domain.Appointment, business *domain.Business, now time.Time) error {
	if business == nil || business.ID != a.BusinessID {
		// статус изменился между чтением и блокировкой
		return fmt.Errorf("%w: appointment %d changed concurrently", ErrInvalidTransition, a.ID)
	}

	window := a.Interval().Expand(business.Buffer())

	// Освобождаем слоты чужих просроченных pending-записей
	if uc.settings.PendingHold > 0 {
		if err := uc.cancelExpiredHolds(txCtx, a, window, now); err != nil {
			return err
		}
	}

	appointments, err := uc.appointmentRepo.GetByBusinessWithFilter(txCtx, domain.AppointmentsFilter{
		BusinessID: a.BusinessID,
		From:       &window.Start,
		To:         &window.End,
		ExcludeID:  &a.ID,
	})
	if err != nil {
		uc.logger.Error("TransitionAppointment: failed to get appointments: %v", err)
		return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
	}

	err = uc.engine.Check(availability.Query{
		Business:  business,
		Duration:  a.EndTime.Sub(a.StartTime),
		Occupied:  domain.Occupying(appointments, now, uc.settings.PendingHold),
		NotBefore: now,
	}, a.StartTime)
	if err != nil {
		mapped := mapCheckError(err)
		if errors.Is(mapped, domain.ErrConflict) {
			uc.metrics.BookingConflict(conflictStageConfirm)
		}
		uc.logger.Warn("TransitionAppointment: id=%d cannot be confirmed: %v", a.ID, err)
		return mapped
	}

	if err := uc.appointmentRepo.UpdateStatus(txCtx, a.ID, domain.StatusPending, domain.StatusConfirmed); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusMismatch) {
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		uc.logger.Error("TransitionAppointment: failed to confirm id=%d: %v", a.ID, err)
		return fmt.Errorf("%w: failed to confirm: %w", ErrInternal, err)
	}
	return nil
}

// cancelExpiredHolds отменяет просроченные pending-записи в окне, кроме подтверждаемой
func (uc *UseCase) cancelExpiredHolds(txCtx context.Context, a *domain.Appointment, window domain.Interval, now time.Time) error {
	expired, err := uc.appointmentRepo.CancelExpiredHolds(txCtx, domain.ExpiredHoldsFilter{
		BusinessID:    a.BusinessID,
		CreatedBefore: now.Add(-uc.settings.PendingHold),
		From:          window.Start,
		To:            window.End,
		ExcludeID:     &a.ID,
	}, now)
	if err != nil {
		uc.logger.Error("TransitionAppointment: failed to cancel expired holds: %v", err)
		return fmt.Errorf("%w: failed to cancel expired holds: %w", ErrInternal, err)
	}

	for _, id := range expired {
		if _, err := uc.outboxRepo.Add(txCtx, domain.AggregateAppointment, id, domain.EventAppointmentCancelled,
			domain.NewHoldExpiredEventPayload(id, a.BusinessID)); err != nil {
			uc.logger.Error("TransitionAppointment: failed to add outbox event: %v", err)
			return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
		}
	}
	if len(expired) > 0 {
		uc.logger.Info("TransitionAppointment: cancelled %d expired holds: ids=%v", len(expired), expired)
	}
	return nil
}

func (uc *UseCase) mapGetError(id int64, err error) error {
	if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		uc.logger.Warn("TransitionAppointment: appointment id=%d not found", id)
		return ErrAppointmentNotFound
	}
	uc.logger.Error("TransitionAppointment: failed to get appointment id=%d: %v", id, err)
	return fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
}
