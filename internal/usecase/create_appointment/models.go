package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	BusinessID    int64
	ClientID      int64
	ServiceID     int64
	StartTime     time.Time                // UTC-инстант начала, одно из значений GetAvailability
	InitialStatus domain.AppointmentStatus // pending (клиент) или confirmed (бизнес)
	Notes         *string
}

// Response модель ответа
type Response struct {
	Appointment *domain.Appointment
}

// Settings параметры бронирования из конфигурации
type Settings struct {
	MinNotice          time.Duration
	AdvanceBookingDays int           // 0 = без ограничения
	PendingHold        time.Duration // 0 = pending-записи не истекают
}
