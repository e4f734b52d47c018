package get_availability

import (
	"time"

	getAvailability "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_availability"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date            string          `json:"date"`
	BusinessID      int64           `json:"businessId"`
	ServiceID       int64           `json:"serviceId"`
	TimeZone        string          `json:"timeZone"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель свободного слота
type AvailableSlot struct {
	StartTime  time.Time `json:"startTime"` // UTC, передается в POST /appointments без изменений
	EndTime    time.Time `json:"endTime"`
	LocalStart string    `json:"localStart"` // Время по часам бизнеса, HH:MM
	LocalEnd   string    `json:"localEnd"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:  slot.StartTime.UTC(),
			EndTime:    slot.EndTime.UTC(),
			LocalStart: slot.LocalStart.String(),
			LocalEnd:   slot.LocalEnd.String(),
		}
	}

	return &AvailabilityResponse{
		Date:            resp.Date.String(),
		BusinessID:      resp.BusinessID,
		ServiceID:       resp.ServiceID,
		TimeZone:        resp.TimeZone,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(businessID, serviceID int64, dateStr string) (*getAvailability.Request, error) {
	date, err := tzconv.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailability.Request{
		BusinessID: businessID,
		ServiceID:  serviceID,
		Date:       date,
	}, nil
}
