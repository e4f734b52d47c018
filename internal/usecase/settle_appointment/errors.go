package settle_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("settle_appointment: appointment not found: %w", domain.ErrNotFound)

	// ErrAlreadySettled возвращается, когда оплата по записи уже существует
	ErrAlreadySettled = fmt.Errorf("settle_appointment: appointment is already settled: %w", domain.ErrAlreadySettled)

	// ErrNotCheckoutEligible возвращается, когда запись не в статусе confirmed
	ErrNotCheckoutEligible = fmt.Errorf("settle_appointment: appointment is not eligible for checkout: %w", domain.ErrNotCheckoutEligible)

	// ErrInvalidAmount возвращается при некорректных суммах оплаты
	ErrInvalidAmount = fmt.Errorf("settle_appointment: invalid amount: %w", domain.ErrInvalidAmount)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("settle_appointment: invalid input data: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("settle_appointment: internal error")
)
