package settle_appointment

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	settleAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/settle_appointment"
)

// SettleRequest HTTP request model
type SettleRequest struct {
	Method              string `json:"method"`                        // cash или card
	AmountOverrideCents *int64 `json:"amountOverrideCents,omitempty"` // Фактическая сумма (чаевые, скидка)
	TenderedCents       *int64 `json:"tenderedCents,omitempty"`       // Переданные наличные
}

// SettlementResponse HTTP response model
type SettlementResponse struct {
	Payment     *models.PaymentResponse     `json:"payment"`
	Appointment *models.AppointmentResponse `json:"appointment"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *SettleRequest) ToUseCaseRequest(appointmentID int64) *settleAppointment.Request {
	return &settleAppointment.Request{
		AppointmentID:       appointmentID,
		Method:              domain.PaymentMethod(r.Method),
		AmountOverrideCents: r.AmountOverrideCents,
		TenderedCents:       r.TenderedCents,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *settleAppointment.Response) *SettlementResponse {
	return &SettlementResponse{
		Payment:     models.FromDomainPayment(resp.Payment),
		Appointment: models.FromDomainAppointment(resp.Appointment),
	}
}
