package create_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = fmt.Errorf("create_appointment: business not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("create_appointment: service not found: %w", domain.ErrNotFound)

	// ErrSlotNotAvailable возвращается, когда слот пересекается с другой записью (с учетом буфера)
	ErrSlotNotAvailable = fmt.Errorf("create_appointment: slot is not available: %w", domain.ErrConflict)

	// ErrInvalidTimeSlot возвращается, когда начало не на сетке слотов или вне рабочих часов
	ErrInvalidTimeSlot = fmt.Errorf("create_appointment: invalid time slot: %w", domain.ErrInvalidInput)

	// ErrTooLateToBook возвращается, когда слот уже начался или нарушает min_notice_minutes
	ErrTooLateToBook = fmt.Errorf("create_appointment: too late to book this slot: %w", domain.ErrInvalidInput)

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advance_booking_days
	ErrDateTooFarInFuture = fmt.Errorf("create_appointment: date is too far in the future: %w", domain.ErrInvalidInput)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_appointment: invalid input data: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
