package transition_appointment

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	transitionAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_appointment"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string  `json:"status"`           // confirmed или cancelled
	Reason *string `json:"reason,omitempty"` // Причина отмены
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateStatusRequest) ToUseCaseRequest(appointmentID int64) *transitionAppointment.Request {
	return &transitionAppointment.Request{
		AppointmentID: appointmentID,
		TargetStatus:  domain.AppointmentStatus(r.Status),
		Reason:        r.Reason,
	}
}
