package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	paymentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/payment"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

// Service сервис чтения записей и оплат
type Service struct {
	appointmentRepo AppointmentRepository
	paymentRepo     PaymentRepository
	grace           time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	paymentRepo PaymentRepository,
	grace time.Duration,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		paymentRepo:     paymentRepo,
		grace:           grace,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	a, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(a), nil
}

// ListByBusiness получает записи бизнеса с фильтрацией
//
// Примеры использования:
// - Все активные записи: ListByBusiness(ctx, &ListByBusinessRequest{BusinessID: 7})
// - Записи за период: указать From и To
// - Только подтвержденные: указать Status = "confirmed"
// - Включая отмененные и завершенные: IncludeInactive = true
func (s *Service) ListByBusiness(ctx context.Context, req *models.ListByBusinessRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("ListByBusiness: fetching appointments for business=%d", req.BusinessID)
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if req.BusinessID <= 0 {
		return nil, fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListByBusiness: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	list, err := s.appointmentRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListByBusiness: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: ListByBusiness - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByBusiness: fetched %d appointments for business=%d", len(list), req.BusinessID)
	return models.FromDomainAppointmentList(list), nil
}

// CheckoutQueue возвращает подтвержденные записи бизнеса, готовые к оплате
// (end + grace <= now), в порядке начала
func (s *Service) CheckoutQueue(ctx context.Context, businessID int64) (*models.AppointmentListResponse, error) {
	s.logger.Info("CheckoutQueue: business=%d", businessID)

	if businessID <= 0 {
		return nil, fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	confirmed := domain.StatusConfirmed
	list, err := s.appointmentRepo.GetByBusinessWithFilter(ctx, domain.AppointmentsFilter{
		BusinessID: businessID,
		To:         &now,
		Status:     &confirmed,
	})
	if err != nil {
		s.logger.Error("CheckoutQueue: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: CheckoutQueue - repository error: %v", ErrInternal, err)
	}

	eligible := make([]*domain.Appointment, 0, len(list))
	for _, a := range list {
		if a.IsCheckoutEligible(now, s.grace) {
			eligible = append(eligible, a)
		}
	}

	s.logger.Info("CheckoutQueue: %d of %d confirmed appointments are due for business=%d", len(eligible), len(list), businessID)
	return models.FromDomainAppointmentList(eligible), nil
}

// GetPayment получает оплату записи
func (s *Service) GetPayment(ctx context.Context, appointmentID int64) (*models.PaymentResponse, error) {
	s.logger.Info("GetPayment: appointment id=%d", appointmentID)

	p, err := s.paymentRepo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			if _, err := s.appointmentRepo.GetByID(ctx, appointmentID); errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return nil, ErrAppointmentNotFound
			}
			s.logger.Warn("GetPayment: appointment id=%d is not settled", appointmentID)
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("GetPayment: repository error for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: GetPayment - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPayment(p), nil
}
