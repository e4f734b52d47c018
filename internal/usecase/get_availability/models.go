package get_availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	BusinessID int64
	ServiceID  int64
	Date       tzconv.CivilDate // Дата в часовом поясе бизнеса
}

// Response модель ответа со списком слотов
type Response struct {
	Date            tzconv.CivilDate
	BusinessID      int64
	ServiceID       int64
	TimeZone        string
	DurationMinutes int
	Slots           []domain.Slot // По возрастанию времени начала
}

// Settings параметры расчета из конфигурации
type Settings struct {
	MinNotice          time.Duration
	AdvanceBookingDays int           // 0 = без ограничения
	PendingHold        time.Duration // 0 = pending-записи не истекают
}
