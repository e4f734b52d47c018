// Package checkout holds the platform fee policy and settlement arithmetic.
// Every amount is an integer number of cents.
package checkout

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ErrInvalidFeePolicy fee configuration is out of range
var ErrInvalidFeePolicy = errors.New("checkout: invalid fee policy")

// FeePolicy platformFee = roundHalfUp(base * RateBps / 10000) + FixedFeeCents
type FeePolicy struct {
	RateBps       int64
	FixedFeeCents int64
}

// NewFeePolicy validates and builds a policy
func NewFeePolicy(rateBps, fixedFeeCents int64) (FeePolicy, error) {
	if rateBps < 0 || rateBps > domain.BasisPointsDenominator {
		return FeePolicy{}, fmt.Errorf("%w: rate %d bps", ErrInvalidFeePolicy, rateBps)
	}
	if fixedFeeCents < 0 {
		return FeePolicy{}, fmt.Errorf("%w: fixed fee %d", ErrInvalidFeePolicy, fixedFeeCents)
	}
	return FeePolicy{RateBps: rateBps, FixedFeeCents: fixedFeeCents}, nil
}

// PlatformFee computes the fee for a non-negative base amount.
// The percentage part is rounded half-up to the nearest cent.
func (p FeePolicy) PlatformFee(baseCents int64) int64 {
	half := int64(domain.BasisPointsDenominator / 2)
	return (baseCents*p.RateBps+half)/domain.BasisPointsDenominator + p.FixedFeeCents
}

// Breakdown is the settlement arithmetic of one payment
type Breakdown struct {
	BaseCents        int64
	GrossCents       int64
	Overridden       bool
	AdjustmentCents  int64
	PlatformFeeCents int64
	NetCents         int64
	TenderedCents    *int64
	ChangeCents      *int64
}

// Compute splits a payment. The fee is always computed on the snapshotted
// price; an override (tip, discount) changes gross and net only.
func (p FeePolicy) Compute(priceCents int64, override *int64, method domain.PaymentMethod, tendered *int64) (Breakdown, error) {
	if !method.IsValid() {
		return Breakdown{}, fmt.Errorf("%w: unknown method %q", domain.ErrInvalidInput, method)
	}
	if priceCents < 0 {
		return Breakdown{}, fmt.Errorf("%w: negative price %d", domain.ErrInvalidAmount, priceCents)
	}

	gross := priceCents
	if override != nil {
		gross = *override
	}
	if gross <= 0 {
		return Breakdown{}, fmt.Errorf("%w: gross amount must be positive, got %d", domain.ErrInvalidAmount, gross)
	}

	fee := p.PlatformFee(priceCents)
	net := gross - fee
	if net < 0 {
		return Breakdown{}, fmt.Errorf("%w: platform fee %d exceeds gross amount %d", domain.ErrInvalidAmount, fee, gross)
	}

	b := Breakdown{
		BaseCents:        priceCents,
		GrossCents:       gross,
		Overridden:       override != nil && *override != priceCents,
		AdjustmentCents:  gross - priceCents,
		PlatformFeeCents: fee,
		NetCents:         net,
	}

	switch method {
	case domain.PaymentMethodCash:
		if tendered != nil {
			if *tendered < gross {
				return Breakdown{}, fmt.Errorf("%w: tendered %d is less than amount due %d", domain.ErrInvalidAmount, *tendered, gross)
			}
			change := *tendered - gross
			t := *tendered
			b.TenderedCents = &t
			b.ChangeCents = &change
		}
	case domain.PaymentMethodCard:
		if tendered != nil {
			return Breakdown{}, fmt.Errorf("%w: tendered amount applies to cash only", domain.ErrInvalidAmount)
		}
	}

	return b, nil
}
