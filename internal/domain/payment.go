package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how the client paid
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// IsValid reports whether m is a known method
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

// Payment is the immutable settlement record of an appointment.
// All amounts are integer cents.
type Payment struct {
	ID            int64
	Reference     uuid.UUID // receipt number shown to the client
	AppointmentID int64
	Method        PaymentMethod

	BaseAmountCents  int64 // snapshotted appointment price, the fee base
	GrossAmountCents int64 // amount actually collected
	AmountOverridden bool
	AdjustmentCents  int64 // gross - base (tips, discounts)
	PlatformFeeCents int64
	NetAmountCents   int64 // gross - platform fee

	FeeRateBps    int64 // fee configuration in force when settled
	FixedFeeCents int64

	TenderedCents *int64 // cash handed over, cash only
	ChangeCents   *int64 // tendered - gross, cash only

	CreatedAt time.Time
}
