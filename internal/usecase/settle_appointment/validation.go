package settle_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/checkout"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	if !req.Method.IsValid() {
		return fmt.Errorf("%w: method must be cash or card, got %q", ErrInvalidInput, req.Method)
	}

	return nil
}

// mapComputeError переводит ошибку расчета в ошибку usecase
func mapComputeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: failed to compute fee: %v", ErrInternal, err)
	}
}

// newPayment собирает оплату из расчета
func newPayment(appointmentID int64, method domain.PaymentMethod, b checkout.Breakdown, policy checkout.FeePolicy) *domain.Payment {
	return &domain.Payment{
		AppointmentID:    appointmentID,
		Method:           method,
		BaseAmountCents:  b.BaseCents,
		GrossAmountCents: b.GrossCents,
		AmountOverridden: b.Overridden,
		AdjustmentCents:  b.AdjustmentCents,
		PlatformFeeCents: b.PlatformFeeCents,
		NetAmountCents:   b.NetCents,
		FeeRateBps:       policy.RateBps,
		FixedFeeCents:    policy.FixedFeeCents,
		TenderedCents:    b.TenderedCents,
		ChangeCents:      b.ChangeCents,
	}
}
