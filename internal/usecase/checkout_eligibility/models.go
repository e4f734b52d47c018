package checkout_eligibility

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Причины, по которым запись нельзя рассчитать
const (
	ReasonNotConfirmed   = "not_confirmed"
	ReasonNotFinished    = "not_finished"
	ReasonAlreadySettled = "already_settled"
)

// Request модель запроса
type Request struct {
	AppointmentID int64
}

// Response результат проверки
type Response struct {
	AppointmentID int64
	Status        domain.AppointmentStatus
	Eligible      bool
	EligibleAt    time.Time // Конец записи плюс grace period
	Reason        *string   // Заполнено, если Eligible == false
}
