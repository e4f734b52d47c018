package checkout_eligibility

import (
	"time"

	checkoutEligibility "github.com/m04kA/SMC-SchedulingService/internal/usecase/checkout_eligibility"
)

// EligibilityResponse HTTP response model
type EligibilityResponse struct {
	AppointmentID int64     `json:"appointmentId"`
	Status        string    `json:"status"`
	Eligible      bool      `json:"eligible"`
	EligibleAt    time.Time `json:"eligibleAt"`
	Reason        *string   `json:"reason,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkoutEligibility.Response) *EligibilityResponse {
	return &EligibilityResponse{
		AppointmentID: resp.AppointmentID,
		Status:        string(resp.Status),
		Eligible:      resp.Eligible,
		EligibleAt:    resp.EligibleAt,
		Reason:        resp.Reason,
	}
}
