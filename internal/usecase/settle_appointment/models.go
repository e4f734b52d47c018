package settle_appointment

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на оплату записи
type Request struct {
	AppointmentID       int64
	Method              domain.PaymentMethod
	AmountOverrideCents *int64 // Фактически полученная сумма, если отличается от цены (чаевые, скидка)
	TenderedCents       *int64 // Переданные наличные, только для cash
}

// Response модель ответа
type Response struct {
	Payment     *domain.Payment
	Appointment *domain.Appointment
}
