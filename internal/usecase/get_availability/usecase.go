package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	directoryClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/directory"
)

// UseCase use case для получения свободных слотов
type UseCase struct {
	appointmentRepo AppointmentRepository
	directory       DirectoryClient
	engine          Engine
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	directory DirectoryClient,
	engine Engine,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		directory:       directory,
		engine:          engine,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: business=%d, service=%d, date=%s", req.BusinessID, req.ServiceID, req.Date)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем бизнес и услугу
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailability: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetAvailability: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if err := validateService(service); err != nil {
		uc.logger.Error("GetAvailability: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	response := &Response{
		Date:            req.Date,
		BusinessID:      req.BusinessID,
		ServiceID:       req.ServiceID,
		TimeZone:        business.TimeZone,
		DurationMinutes: service.DurationMinutes,
		Slots:           []domain.Slot{},
	}

	// 4. Прошедшие даты не имеют слотов, слишком дальние запрещены
	today, err := uc.engine.LocalDate(now, business.TimeZone)
	if err != nil {
		uc.logger.Error("GetAvailability: business id=%d has invalid time zone %q: %v", business.ID, business.TimeZone, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if req.Date.Before(today) {
		uc.logger.Info("GetAvailability: date %s is in the past for business=%d", req.Date, business.ID)
		return response, nil
	}
	if err := validateAdvance(req.Date, today, uc.settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailability: date validation failed: %v", err)
		return nil, err
	}

	// 5. Получаем занимающие записи за день с учетом буфера
	window, err := uc.engine.DayWindow(business, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to resolve day window: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	appointments, err := uc.appointmentRepo.GetByBusinessWithFilter(ctx, domain.AppointmentsFilter{
		BusinessID: business.ID,
		From:       &window.Start,
		To:         &window.End,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
	}

	// 6. Считаем слоты
	slots, err := uc.engine.Slots(availability.Query{
		Business:  business,
		Duration:  service.Duration(),
		Date:      req.Date,
		Occupied:  domain.Occupying(appointments, now, uc.settings.PendingHold),
		NotBefore: now.Add(uc.settings.MinNotice),
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to compute slots for business=%d: %v", business.ID, err)
		return nil, fmt.Errorf("%w: failed to compute slots: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailability: business=%d, date=%s, %d slots, %d occupying appointments",
		business.ID, req.Date, len(slots), len(appointments))

	response.Slots = slots
	return response, nil
}
