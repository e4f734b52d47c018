package domain

import (
	"time"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsOccupying reports whether an appointment in this status blocks its time slot
func (s AppointmentStatus) IsOccupying() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment is a booked service for a client at a business.
// StartTime and EndTime are UTC instants.
type Appointment struct {
	ID         int64
	BusinessID int64
	ClientID   int64
	ServiceID  int64
	StartTime  time.Time
	EndTime    time.Time
	Status     AppointmentStatus

	// Denormalized service data, frozen at booking time
	ServiceName string
	PriceCents  int64
	Notes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the [start, end) occupied by the appointment
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

// DurationMinutes returns the length of the appointment in minutes
func (a *Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime) / time.Minute)
}

// IsHoldExpired reports whether a pending hold has outlived holdTTL.
// A zero holdTTL means holds never expire.
func (a *Appointment) IsHoldExpired(now time.Time, holdTTL time.Duration) bool {
	if a.Status != StatusPending || holdTTL <= 0 {
		return false
	}
	return !now.Before(a.CreatedAt.Add(holdTTL))
}

// Occupies reports whether the appointment blocks its slot at the moment now
func (a *Appointment) Occupies(now time.Time, holdTTL time.Duration) bool {
	return a.Status.IsOccupying() && !a.IsHoldExpired(now, holdTTL)
}

// Occupying keeps the appointments that block their slot at the moment now
func Occupying(appointments []*Appointment, now time.Time, holdTTL time.Duration) []*Appointment {
	out := make([]*Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.Occupies(now, holdTTL) {
			out = append(out, a)
		}
	}
	return out
}

// IsCheckoutEligible reports whether the appointment can be settled:
// it is confirmed and its end plus the grace period has passed.
func (a *Appointment) IsCheckoutEligible(now time.Time, grace time.Duration) bool {
	return a.Status == StatusConfirmed && !now.Before(a.EndTime.Add(grace))
}

// AppointmentsFilter фильтр для получения записей бизнеса
type AppointmentsFilter struct {
	BusinessID      int64              // Обязательный параметр
	From            *time.Time         // Записи, заканчивающиеся после From (опционально)
	To              *time.Time         // Записи, начинающиеся до To (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли завершенные и отмененные записи
	ExcludeID       *int64             // Исключить запись (при повторной проверке подтверждаемой записи)
}

// ExpiredHoldsFilter выбор просроченных pending-записей для отмены
type ExpiredHoldsFilter struct {
	BusinessID    int64
	CreatedBefore time.Time // created_at <= CreatedBefore
	From          time.Time // пересечение с [From, To)
	To            time.Time
	ExcludeID     *int64 // подтверждаемая запись не отменяется
}
