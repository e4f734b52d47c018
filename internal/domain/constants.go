package domain

// Default scheduling values
const (
	DefaultSlotStepMinutes    = 15
	DefaultMinNoticeMinutes   = 0
	DefaultAdvanceBookingDays = 0 // 0 = unlimited
	DefaultPendingHoldMinutes = 0 // 0 = holds never expire
)

// Default checkout values: 3.9% + 30 cents
const (
	DefaultFeeRateBps         = 390
	DefaultFixedFeeCents      = 30
	DefaultGracePeriodMinutes = 0
)

// Validation limits
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxServiceDurationMinutes   = 24 * 60
	BasisPointsDenominator      = 10000
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// HoldExpiredReason is recorded on pending appointments cancelled by hold expiry
const HoldExpiredReason = "hold expired"

// OccupyingStatuses statuses that block a time slot
var OccupyingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// InactiveStatuses statuses excluded from listings unless requested
var InactiveStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
}
