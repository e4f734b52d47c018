package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidTimeRange возвращается, когда from не раньше to
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// Request модели

// ListByBusinessRequest запрос на получение записей бизнеса
type ListByBusinessRequest struct {
	BusinessID      int64      `json:"businessId"`
	From            *time.Time `json:"from,omitempty"`            // Начало периода (опционально)
	To              *time.Time `json:"to,omitempty"`              // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить завершенные и отмененные записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListByBusinessRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		BusinessID:      r.BusinessID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return filter, ErrInvalidTimeRange
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	BusinessID      int64     `json:"businessId"`
	ClientID        int64     `json:"clientId"`
	ServiceID       int64     `json:"serviceId"`
	StartTime       time.Time `json:"startTime"` // UTC, RFC 3339
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`

	// Денормализованные данные услуги
	ServiceName string  `json:"serviceName"`
	PriceCents  int64   `json:"priceCents"`
	Notes       *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// PaymentResponse ответ с данными оплаты
type PaymentResponse struct {
	ID               int64     `json:"id"`
	Reference        uuid.UUID `json:"reference"`
	AppointmentID    int64     `json:"appointmentId"`
	Method           string    `json:"method"`
	BaseAmountCents  int64     `json:"baseAmountCents"`
	GrossAmountCents int64     `json:"grossAmountCents"`
	AmountOverridden bool      `json:"amountOverridden"`
	AdjustmentCents  int64     `json:"adjustmentCents"`
	PlatformFeeCents int64     `json:"platformFeeCents"`
	NetAmountCents   int64     `json:"netAmountCents"`
	FeeRateBps       int64     `json:"feeRateBps"`
	FixedFeeCents    int64     `json:"fixedFeeCents"`
	TenderedCents    *int64    `json:"tenderedCents,omitempty"`
	ChangeCents      *int64    `json:"changeCents,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		BusinessID:         a.BusinessID,
		ClientID:           a.ClientID,
		ServiceID:          a.ServiceID,
		StartTime:          a.StartTime.UTC(),
		EndTime:            a.EndTime.UTC(),
		DurationMinutes:    a.DurationMinutes(),
		Status:             string(a.Status),
		ServiceName:        a.ServiceName,
		PriceCents:         a.PriceCents,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if r := FromDomainAppointment(a); r != nil {
			resp.Appointments = append(resp.Appointments, *r)
		}
	}

	return resp
}

// FromDomainPayment конвертирует domain модель оплаты в DTO
func FromDomainPayment(p *domain.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}

	return &PaymentResponse{
		ID:               p.ID,
		Reference:        p.Reference,
		AppointmentID:    p.AppointmentID,
		Method:           string(p.Method),
		BaseAmountCents:  p.BaseAmountCents,
		GrossAmountCents: p.GrossAmountCents,
		AmountOverridden: p.AmountOverridden,
		AdjustmentCents:  p.AdjustmentCents,
		PlatformFeeCents: p.PlatformFeeCents,
		NetAmountCents:   p.NetAmountCents,
		FeeRateBps:       p.FeeRateBps,
		FixedFeeCents:    p.FixedFeeCents,
		TenderedCents:    p.TenderedCents,
		ChangeCents:      p.ChangeCents,
		CreatedAt:        p.CreatedAt,
	}
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
