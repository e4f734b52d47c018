package transition_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("transition_appointment: appointment not found: %w", domain.ErrNotFound)

	// ErrInvalidTransition возвращается, когда переход не разрешен жизненным циклом
	ErrInvalidTransition = fmt.Errorf("transition_appointment: transition not allowed: %w", domain.ErrInvalidTransition)

	// ErrCompleteViaCheckout возвращается при попытке завершить запись в обход оплаты
	ErrCompleteViaCheckout = fmt.Errorf("transition_appointment: appointments are completed by checkout only: %w", domain.ErrInvalidTransition)

	// ErrSlotNotAvailable возвращается, когда при подтверждении слот оказался занят
	ErrSlotNotAvailable = fmt.Errorf("transition_appointment: slot is not available: %w", domain.ErrConflict)

	// ErrSlotNoLongerValid возвращается, когда слот больше не проходит правила расписания (время прошло, изменились часы работы)
	ErrSlotNoLongerValid = fmt.Errorf("transition_appointment: slot is no longer valid: %w", domain.ErrConflict)

	// ErrBusinessNotFound возвращается, когда бизнес записи не найден в справочнике
	ErrBusinessNotFound = fmt.Errorf("transition_appointment: business not found: %w", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("transition_appointment: invalid input data: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("transition_appointment: internal error")
)
