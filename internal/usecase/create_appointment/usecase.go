package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	directoryClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/directory"
)

const (
	conflictStageCheck      = "create"
	conflictStageConstraint = "store"
)

// UseCase use case для создания записи
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

// Execute выполняет use case создания записи.
// Проверка слота и вставка выполняются в одной сериализуемой транзакции,
// занимающие записи в окне [start-buffer, end+buffer) блокируются (FOR UPDATE).
// Ограничение appointments_no_overlap в БД страхует от пропущенной гонки.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: business=%d, client=%d, service=%d, start=%s, status=%s",
		req.BusinessID, req.ClientID, req.ServiceID, req.StartTime.UTC().Format("2006-01-02T15:04:05Z"), req.InitialStatus)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем бизнес и услугу
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			uc.logger.Warn("CreateAppointment: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if err := validateService(service); err != nil {
		uc.logger.Error("CreateAppointment: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 4. Ограничение на бронирование вперед
	startUTC := req.StartTime.UTC()
	date, err := uc.engine.LocalDate(startUTC, business.TimeZone)
	if err != nil {
		uc.logger.Error("CreateAppointment: business id=%d has invalid time zone %q: %v", business.ID, business.TimeZone, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	today, err := uc.engine.LocalDate(now, business.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := validateAdvance(date, today, uc.settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
		return nil, err
	}

	endUTC := startUTC.Add(service.Duration())
	window := domain.Interval{Start: startUTC, End: endUTC}.Expand(business.Buffer())

	var result *domain.Appointment

	// 5. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Освобождаем слоты просроченных pending-записей
		if uc.settings.PendingHold > 0 {
			expired, err := uc.appointmentRepo.CancelExpiredHolds(txCtx, domain.ExpiredHoldsFilter{
				BusinessID:    business.ID,
				CreatedBefore: now.Add(-uc.settings.PendingHold),
				From:          window.Start,
				To:            window.End,
			}, now)
			if err != nil {
				uc.logger.Error("CreateAppointment: failed to cancel expired holds: %v", err)
				return fmt.Errorf("%w: failed to cancel expired holds: %w", ErrInternal, err)
			}
			for _, id := range expired {
				if _, err := uc.outboxRepo.Add(txCtx, domain.AggregateAppointment, id, domain.EventAppointmentCancelled,
					domain.NewHoldExpiredEventPayload(id, business.ID)); err != nil {
					return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
				}
			}
			if len(expired) > 0 {
				uc.logger.Info("CreateAppointment: cancelled %d expired holds: ids=%v", len(expired), expired)
			}
		}

		// 5.2. Получаем занимающие записи в окне с блокировкой (FOR UPDATE)
		appointments, err := uc.appointmentRepo.GetByBusinessWithFilter(txCtx, domain.AppointmentsFilter{
			BusinessID: business.ID,
			From:       &window.Start,
			To:         &window.End,
		})
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		// 5.3. Проверяем слот по тем же правилам, что и GetAvailability
		err = uc.engine.Check(availability.Query{
			Business:  business,
			Duration:  service.Duration(),
			Occupied:  domain.Occupying(appointments, now, uc.settings.PendingHold),
			NotBefore: now.Add(uc.settings.MinNotice),
		}, startUTC)
		if err != nil {
			mapped := mapCheckError(err)
			if errors.Is(mapped, ErrSlotNotAvailable) {
				uc.metrics.BookingConflict(conflictStageCheck)
			}
			uc.logger.Warn("CreateAppointment: slot check failed: business=%d, start=%s: %v", business.ID, startUTC, err)
			return mapped
		}

		// 5.4. Создаем запись с денормализацией данных услуги
		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			BusinessID:  business.ID,
			ClientID:    req.ClientID,
			ServiceID:   service.ID,
			StartTime:   startUTC,
			EndTime:     endUTC,
			Status:      req.InitialStatus,
			ServiceName: service.Name,
			PriceCents:  service.PriceCents,
			Notes:       req.Notes,
		})
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrOverlap) {
				uc.metrics.BookingConflict(conflictStageConstraint)
				uc.logger.Warn("CreateAppointment: overlap rejected by constraint: business=%d, start=%s", business.ID, startUTC)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		// 5.5. Событие для уведомлений
		if _, err := uc.outboxRepo.Add(txCtx, domain.AggregateAppointment, created.ID, domain.EventAppointmentCreated,
			domain.NewAppointmentEventPayload(created)); err != nil {
			uc.logger.Error("CreateAppointment: failed to add outbox event: %v", err)
			return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.metrics.AppointmentCreated(string(result.Status))
	uc.logger.Info("CreateAppointment: successfully created appointment id=%d, status=%s", result.ID, result.Status)

	return &Response{Appointment: result}, nil
}
