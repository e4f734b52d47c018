package checkout_eligibility

import (
	"context"

	checkoutEligibility "github.com/m04kA/SMC-SchedulingService/internal/usecase/checkout_eligibility"
)

type CheckoutEligibilityUseCase interface {
	Execute(ctx context.Context, req *checkoutEligibility.Request) (*checkoutEligibility.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
