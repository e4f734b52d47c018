package create_appointment

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if !domain.IsInitialStatus(req.InitialStatus) {
		return fmt.Errorf("%w: initial status must be pending or confirmed, got %q", ErrInvalidInput, req.InitialStatus)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateService проверяет, что услугу можно разместить в расписании
func validateService(service *domain.Service) error {
	if service.DurationMinutes <= 0 || service.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("service %d has invalid duration %d", service.ID, service.DurationMinutes)
	}
	if service.PriceCents < 0 {
		return fmt.Errorf("service %d has negative price %d", service.ID, service.PriceCents)
	}
	return nil
}

// validateAdvance проверяет ограничение на бронирование вперед
func validateAdvance(date, today tzconv.CivilDate, advanceBookingDays int) error {
	if advanceBookingDays == 0 {
		return nil
	}
	if date.After(today.AddDays(advanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}
	return nil
}

// mapCheckError переводит ошибку проверки слота в ошибку usecase
func mapCheckError(err error) error {
	switch {
	case errors.Is(err, availability.ErrOverlap):
		return ErrSlotNotAvailable
	case errors.Is(err, availability.ErrOutsideWorkingHours), errors.Is(err, availability.ErrOffGrid):
		return fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	case errors.Is(err, availability.ErrSlotInPast):
		return ErrTooLateToBook
	default:
		return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
	}
}
