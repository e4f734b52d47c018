package create_appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	CancelExpiredHolds(ctx context.Context, filter domain.ExpiredHoldsFilter, at time.Time) ([]int64, error)
}

// OutboxRepository интерфейс outbox
type OutboxRepository interface {
	Add(ctx context.Context, aggregateType string, aggregateID int64, eventType string, payload interface{}) (uuid.UUID, error)
}

// DirectoryClient интерфейс клиента справочника бизнесов
type DirectoryClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error)
}

// Engine интерфейс проверки слота
type Engine interface {
	Check(q availability.Query, start time.Time) error
	LocalDate(instant time.Time, tzID string) (tzconv.CivilDate, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder доменные счетчики
type MetricsRecorder interface {
	AppointmentCreated(status string)
	BookingConflict(stage string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
