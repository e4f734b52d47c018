package domain

// transitions lists the allowed status changes. Completed is reachable only
// from confirmed and only through checkout settlement.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph
func CanTransition(from, to AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsInitialStatus reports whether an appointment may be created in status s.
// Client self-service creates pending appointments, business staff create confirmed ones.
func IsInitialStatus(s AppointmentStatus) bool {
	return s == StatusPending || s == StatusConfirmed
}
