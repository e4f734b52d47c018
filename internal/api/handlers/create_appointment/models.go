package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	BusinessID    int64   `json:"businessId"`
	ClientID      int64   `json:"clientId"`
	ServiceID     int64   `json:"serviceId"`
	StartTime     string  `json:"startTime"`     // RFC 3339, значение startTime из availability
	InitialStatus string  `json:"initialStatus"` // pending или confirmed
	Notes         *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest() (*createAppointment.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		BusinessID:    r.BusinessID,
		ClientID:      r.ClientID,
		ServiceID:     r.ServiceID,
		StartTime:     startTime.UTC(),
		InitialStatus: domain.AppointmentStatus(r.InitialStatus),
		Notes:         r.Notes,
	}, nil
}
