package settle_appointment

import (
	"context"

	settleAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/settle_appointment"
)

type SettleAppointmentUseCase interface {
	Execute(ctx context.Context, req *settleAppointment.Request) (*settleAppointment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
