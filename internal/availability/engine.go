// Package availability computes bookable slots for a business day.
//
// Candidate starts are generated on the business-local wall clock (every
// step minutes from opening), converted to UTC instants and filtered
// against the closing time, occupied appointments widened by the business
// buffer, and "now". All comparisons happen on absolute instants, so days
// with a DST transition produce correct slots.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var (
	// ErrInvalidSchedule working hours close before they open
	ErrInvalidSchedule = errors.New("availability: invalid working hours")

	// ErrOutsideWorkingHours the slot does not fit into the opening window
	ErrOutsideWorkingHours = errors.New("availability: slot is outside working hours")

	// ErrOffGrid the slot start is not on the step grid
	ErrOffGrid = errors.New("availability: slot start is not on the slot grid")

	// ErrSlotInPast the slot starts before the earliest allowed instant
	ErrSlotInPast = errors.New("availability: slot starts in the past")

	// ErrOverlap the slot overlaps an occupied appointment including buffer
	ErrOverlap = errors.New("availability: slot overlaps an existing appointment")
)

// Converter is the subset of tzconv.Converter the engine needs
type Converter interface {
	ToLocal(instant time.Time, tzID string) (tzconv.CivilTime, error)
	ToUTC(civil tzconv.CivilTime, tzID string) (time.Time, error)
	ToUTCForward(civil tzconv.CivilTime, tzID string) (time.Time, error)
}

// Engine computes slots. It holds no state besides configuration.
type Engine struct {
	tz          Converter
	stepMinutes int
}

// NewEngine creates an engine with the given slot step in minutes
func NewEngine(tz Converter, stepMinutes int) *Engine {
	if stepMinutes <= 0 {
		stepMinutes = domain.DefaultSlotStepMinutes
	}
	return &Engine{tz: tz, stepMinutes: stepMinutes}
}

// Query describes one availability computation
type Query struct {
	Business *domain.Business
	Duration time.Duration
	Date     tzconv.CivilDate
	// Occupied appointments that block their slot; non-occupying ones are ignored
	Occupied []*domain.Appointment
	// NotBefore is the earliest allowed start (now plus minimum notice)
	NotBefore time.Time
}

// window is a resolved opening window of one local date
type window struct {
	date     tzconv.CivilDate
	schedule domain.DaySchedule
	open     time.Time
	close    time.Time
}

// Slots returns bookable slots of q.Date in ascending order
func (e *Engine) Slots(q Query) ([]domain.Slot, error) {
	w, ok, err := e.window(q.Business, q.Date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Slot{}, nil
	}

	busy := busyIntervals(q.Occupied, q.Business.Buffer())
	seen := make(map[int64]struct{})
	slots := make([]domain.Slot, 0)

	openMinutes := w.schedule.OpenTime.Minutes()
	closeMinutes := w.schedule.CloseTime.Minutes()
	for m := openMinutes; m < closeMinutes; m += e.stepMinutes {
		clock := types.TimeString("00:00").AddMinutes(m)
		start, err := e.tz.ToUTC(w.date.At(clock), q.Business.TimeZone)
		if errors.Is(err, tzconv.ErrInvalidLocalTime) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if _, dup := seen[start.Unix()]; dup {
			continue
		}
		if err := e.fits(w, start, q, busy); err != nil {
			continue
		}
		seen[start.Unix()] = struct{}{}

		slot, err := e.slot(start, q.Duration, q.Business.TimeZone)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime.Before(slots[j].StartTime) })
	return slots, nil
}

// Check validates that start is a slot Slots would offer for its local date.
// q.Date is ignored and derived from start.
func (e *Engine) Check(q Query, start time.Time) error {
	local, err := e.tz.ToLocal(start, q.Business.TimeZone)
	if err != nil {
		return err
	}

	w, ok, err := e.window(q.Business, local.Date())
	if err != nil {
		return err
	}
	if !ok {
		return ErrOutsideWorkingHours
	}

	if local.Second != 0 || start.Nanosecond() != 0 {
		return ErrOffGrid
	}
	if (local.Clock().Minutes()-w.schedule.OpenTime.Minutes())%e.stepMinutes != 0 {
		return ErrOffGrid
	}
	// the second occurrence of a repeated wall clock reading is not offered
	canonical, err := e.tz.ToUTC(local, q.Business.TimeZone)
	if err != nil {
		return err
	}
	if !canonical.Equal(start) {
		return ErrOffGrid
	}

	return e.fits(w, start, q, busyIntervals(q.Occupied, q.Business.Buffer()))
}

// LocalDate returns the business-local calendar date of instant
func (e *Engine) LocalDate(instant time.Time, tzID string) (tzconv.CivilDate, error) {
	local, err := e.tz.ToLocal(instant, tzID)
	if err != nil {
		return tzconv.CivilDate{}, err
	}
	return local.Date(), nil
}

// DayWindow returns the UTC interval covering the local date widened by the
// business buffer. Appointments outside it cannot block any slot of the date.
func (e *Engine) DayWindow(b *domain.Business, date tzconv.CivilDate) (domain.Interval, error) {
	start, err := e.tz.ToUTCForward(date.At("00:00"), b.TimeZone)
	if err != nil {
		return domain.Interval{}, err
	}
	end, err := e.tz.ToUTCForward(date.AddDays(1).At("00:00"), b.TimeZone)
	if err != nil {
		return domain.Interval{}, err
	}
	return domain.Interval{Start: start, End: end}.Expand(b.Buffer()), nil
}

// slot builds the display form of a start instant
func (e *Engine) slot(start time.Time, duration time.Duration, tzID string) (domain.Slot, error) {
	end := start.Add(duration)
	localStart, err := e.tz.ToLocal(start, tzID)
	if err != nil {
		return domain.Slot{}, err
	}
	localEnd, err := e.tz.ToLocal(end, tzID)
	if err != nil {
		return domain.Slot{}, err
	}
	return domain.Slot{
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		LocalStart: localStart.Clock(),
		LocalEnd:   localEnd.Clock(),
	}, nil
}

func (e *Engine) window(b *domain.Business, date tzconv.CivilDate) (window, bool, error) {
	schedule := b.WorkingHours.ForWeekday(date.Weekday())
	if !schedule.IsOpen {
		return window{}, false, nil
	}
	if err := schedule.OpenTime.Validate(); err != nil {
		return window{}, false, fmt.Errorf("%w: open time: %v", ErrInvalidSchedule, err)
	}
	if err := schedule.CloseTime.Validate(); err != nil {
		return window{}, false, fmt.Errorf("%w: close time: %v", ErrInvalidSchedule, err)
	}
	if !schedule.OpenTime.IsBefore(schedule.CloseTime) {
		return window{}, false, fmt.Errorf("%w: %s-%s", ErrInvalidSchedule, schedule.OpenTime, schedule.CloseTime)
	}

	open, err := e.tz.ToUTCForward(date.At(schedule.OpenTime), b.TimeZone)
	if err != nil {
		return window{}, false, err
	}
	closeAt, err := e.tz.ToUTCForward(date.At(schedule.CloseTime), b.TimeZone)
	if err != nil {
		return window{}, false, err
	}

	return window{date: date, schedule: schedule, open: open, close: closeAt}, true, nil
}

// fits applies the window, past and overlap rules to a resolved start
func (e *Engine) fits(w window, start time.Time, q Query, busy []domain.Interval) error {
	end := start.Add(q.Duration)
	if start.Before(w.open) || end.After(w.close) {
		return ErrOutsideWorkingHours
	}
	if start.Before(q.NotBefore) {
		return ErrSlotInPast
	}
	candidate := domain.Interval{Start: start, End: end}
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return ErrOverlap
		}
	}
	return nil
}

// busyIntervals widens occupying appointments by the buffer on both sides
func busyIntervals(appointments []*domain.Appointment, buffer time.Duration) []domain.Interval {
	busy := make([]domain.Interval, 0, len(appointments))
	for _, a := range appointments {
		if !a.Status.IsOccupying() {
			continue
		}
		busy = append(busy, a.Interval().Expand(buffer))
	}
	return busy
}
