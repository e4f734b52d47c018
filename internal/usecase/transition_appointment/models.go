package transition_appointment

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на смену статуса
type Request struct {
	AppointmentID int64
	TargetStatus  domain.AppointmentStatus // confirmed или cancelled
	Reason        *string                  // Причина отмены (опционально)
}

// Response модель ответа
type Response struct {
	Appointment *domain.Appointment
	Changed     bool // false для повторной отмены уже отмененной записи
}

// Settings параметры из конфигурации
type Settings struct {
	PendingHold time.Duration // 0 = pending-записи не истекают
}
