package tzconv

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const dateLayout = "2006-01-02"

// CivilDate is a calendar date without a time zone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (CivilDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("%w: %v", ErrInvalidCivilTime, err)
	}
	return DateOf(t), nil
}

// DateOf returns the date of t as read in t's own location.
func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// Weekday is computed on the proleptic Gregorian calendar.
func (d CivilDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns the date n days later (n may be negative).
func (d CivilDate) AddDays(n int) CivilDate {
	return DateOf(time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n))
}

// Before reports whether d is strictly before other.
func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly after other.
func (d CivilDate) After(other CivilDate) bool {
	return other.Before(d)
}

// At combines the date with a wall clock HH:MM.
func (d CivilDate) At(clock types.TimeString) CivilTime {
	return CivilTime{Year: d.Year, Month: d.Month, Day: d.Day, Hour: clock.Hour(), Minute: clock.Minute()}
}

// Valid reports whether the date exists on the calendar.
func (d CivilDate) Valid() bool {
	return DateOf(time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)) == d
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// CivilTime is a wall-clock reading with no zone attached.
type CivilTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// CivilOf returns the wall clock of t in t's own location.
func CivilOf(t time.Time) CivilTime {
	y, m, d := t.Date()
	return CivilTime{Year: y, Month: m, Day: d, Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Date drops the clock part.
func (c CivilTime) Date() CivilDate {
	return CivilDate{Year: c.Year, Month: c.Month, Day: c.Day}
}

// Clock returns the HH:MM part.
func (c CivilTime) Clock() types.TimeString {
	return types.TimeString(fmt.Sprintf("%02d:%02d", c.Hour, c.Minute))
}

// Validate checks field ranges and that the date exists.
func (c CivilTime) Validate() error {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
		return fmt.Errorf("%w: clock out of range in %s", ErrInvalidCivilTime, c)
	}
	if !c.Date().Valid() {
		return fmt.Errorf("%w: no such date %s", ErrInvalidCivilTime, c.Date())
	}
	return nil
}

// naive interprets the reading as if it were UTC.
func (c CivilTime) naive() time.Time {
	return time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
}

func (c CivilTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}
