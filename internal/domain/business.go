package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Business is the read-only view of a business that scheduling needs
type Business struct {
	ID            int64
	Name          string
	TimeZone      string // IANA id, e.g. America/Los_Angeles
	BufferMinutes int    // gap kept before and after every appointment
	WorkingHours  WorkingHours
}

// Buffer returns the buffer as a duration. A negative value counts as zero:
// the buffer only ever widens an occupied interval.
func (b *Business) Buffer() time.Duration {
	if b.BufferMinutes <= 0 {
		return 0
	}
	return time.Duration(b.BufferMinutes) * time.Minute
}

// DaySchedule is the opening window of one weekday in business-local wall clock
type DaySchedule struct {
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// WorkingHours is the weekly opening schedule
type WorkingHours struct {
	Monday    DaySchedule
	Tuesday   DaySchedule
	Wednesday DaySchedule
	Thursday  DaySchedule
	Friday    DaySchedule
	Saturday  DaySchedule
	Sunday    DaySchedule
}

// ForWeekday returns the schedule for the given weekday
func (w WorkingHours) ForWeekday(weekday time.Weekday) DaySchedule {
	switch weekday {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{}
	}
}

// Service is a bookable offering of a business
type Service struct {
	ID              int64
	BusinessID      int64
	Name            string
	DurationMinutes int
	PriceCents      int64
}

// Duration returns the service length as a duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
