package transition_appointment

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	if !req.TargetStatus.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.TargetStatus)
	}

	if req.Reason != nil {
		if req.TargetStatus != domain.StatusCancelled {
			return fmt.Errorf("%w: reason is accepted for cancellation only", ErrInvalidInput)
		}
		if utf8.RuneCountInString(*req.Reason) > domain.MaxCancellationReasonLength {
			return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
		}
	}

	return nil
}

// mapCheckError переводит ошибку повторной проверки слота в ошибку usecase
func mapCheckError(err error) error {
	switch {
	case errors.Is(err, availability.ErrOverlap):
		return ErrSlotNotAvailable
	case errors.Is(err, availability.ErrOutsideWorkingHours),
		errors.Is(err, availability.ErrOffGrid),
		errors.Is(err, availability.ErrSlotInPast):
		return fmt.Errorf("%w: %v", ErrSlotNoLongerValid, err)
	default:
		return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
	}
}
