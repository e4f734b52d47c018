package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outbox event types published for downstream consumers (notifications, payouts)
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentConfirmed = "appointment.confirmed"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
	EventPaymentSettled       = "payment.settled"
)

const (
	AggregateAppointment = "appointment"
	AggregatePayment     = "payment"
)

// OutboxStatus is the relay state of an outbox event
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
)

// OutboxEvent is written in the same transaction as the change it describes
// and later relayed to the message broker.
type OutboxEvent struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   int64
	EventType     string
	Payload       json.RawMessage
	Status        OutboxStatus
	CreatedAt     time.Time
	SentAt        *time.Time
}

// AppointmentEventPayload is the body of appointment.* events
type AppointmentEventPayload struct {
	AppointmentID int64             `json:"appointmentId"`
	BusinessID    int64             `json:"businessId"`
	ClientID      int64             `json:"clientId"`
	ServiceID     int64             `json:"serviceId"`
	Status        AppointmentStatus `json:"status"`
	StartTime     time.Time         `json:"startTime"`
	EndTime       time.Time         `json:"endTime"`
	Reason        *string           `json:"reason,omitempty"`
}

// NewAppointmentEventPayload builds the payload from an appointment
func NewAppointmentEventPayload(a *Appointment) AppointmentEventPayload {
	return AppointmentEventPayload{
		AppointmentID: a.ID,
		BusinessID:    a.BusinessID,
		ClientID:      a.ClientID,
		ServiceID:     a.ServiceID,
		Status:        a.Status,
		StartTime:     a.StartTime.UTC(),
		EndTime:       a.EndTime.UTC(),
		Reason:        a.CancellationReason,
	}
}

// NewHoldExpiredEventPayload builds the cancellation payload of a pending
// appointment released because its hold expired
func NewHoldExpiredEventPayload(appointmentID, businessID int64) AppointmentEventPayload {
	reason := HoldExpiredReason
	return AppointmentEventPayload{
		AppointmentID: appointmentID,
		BusinessID:    businessID,
		Status:        StatusCancelled,
		Reason:        &reason,
	}
}

// PaymentEventPayload is the body of payment.settled events
type PaymentEventPayload struct {
	PaymentID        int64         `json:"paymentId"`
	Reference        uuid.UUID     `json:"reference"`
	AppointmentID    int64         `json:"appointmentId"`
	BusinessID       int64         `json:"businessId"`
	Method           PaymentMethod `json:"method"`
	GrossAmountCents int64         `json:"grossAmountCents"`
	PlatformFeeCents int64         `json:"platformFeeCents"`
	NetAmountCents   int64         `json:"netAmountCents"`
}
