package get_availability

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if !req.Date.Valid() {
		return fmt.Errorf("%w: date %s does not exist", ErrInvalidInput, req.Date)
	}

	return nil
}

// validateService проверяет, что услугу можно разместить в расписании
func validateService(service *domain.Service) error {
	if service.DurationMinutes <= 0 || service.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("service %d has invalid duration %d", service.ID, service.DurationMinutes)
	}
	return nil
}

// validateAdvance проверяет ограничение на бронирование вперед
func validateAdvance(date, today tzconv.CivilDate, advanceBookingDays int) error {
	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays == 0 {
		return nil
	}

	if date.After(today.AddDays(advanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}
	return nil
}
