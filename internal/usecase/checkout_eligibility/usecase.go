package checkout_eligibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// UseCase use case проверки готовности записи к оплате
type UseCase struct {
	appointmentRepo AppointmentRepository
	grace           time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(appointmentRepo AppointmentRepository, grace time.Duration, logger Logger) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		grace:           grace,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute проверяет: status == confirmed и now >= end + grace
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	a, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("CheckoutEligibility: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("CheckoutEligibility: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	resp := &Response{
		AppointmentID: a.ID,
		Status:        a.Status,
		EligibleAt:    a.EndTime.Add(uc.grace).UTC(),
		Eligible:      a.IsCheckoutEligible(now, uc.grace),
	}

	switch {
	case resp.Eligible:
	case a.Status == domain.StatusCompleted:
		resp.Reason = ptr.Ptr(ReasonAlreadySettled)
	case a.Status != domain.StatusConfirmed:
		resp.Reason = ptr.Ptr(ReasonNotConfirmed)
	default:
		resp.Reason = ptr.Ptr(ReasonNotFinished)
	}

	uc.logger.Info("CheckoutEligibility: id=%d, status=%s, eligible=%t", a.ID, a.Status, resp.Eligible)
	return resp, nil
}
