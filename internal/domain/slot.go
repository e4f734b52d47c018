package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Slot is a bookable start time. StartTime/EndTime are UTC,
// LocalStart/LocalEnd are the business wall clock for display.
type Slot struct {
	StartTime  time.Time
	EndTime    time.Time
	LocalStart types.TimeString
	LocalEnd   types.TimeString
}
