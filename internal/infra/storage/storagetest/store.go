// Package storagetest хранилище в памяти для тестов usecase.
// Транзакции выполняются строго по одной, ошибка внутри транзакции откатывает изменения,
// поэтому поведение совпадает с SERIALIZABLE + ограничениями PostgreSQL.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	paymentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/payment"
)

// Store общие данные всех репозиториев
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextAppointmentID int64
	nextPaymentID     int64

	appointments map[int64]domain.Appointment
	payments     map[int64]domain.Payment // ключ appointment_id
	events       []domain.OutboxEvent

	// Now время для created_at/updated_at
	Now func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		appointments: make(map[int64]domain.Appointment),
		payments:     make(map[int64]domain.Payment),
		Now:          time.Now,
	}
}

type snapshot struct {
	nextAppointmentID int64
	nextPaymentID     int64
	appointments      map[int64]domain.Appointment
	payments          map[int64]domain.Payment
	events            []domain.OutboxEvent
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		nextAppointmentID: s.nextAppointmentID,
		nextPaymentID:     s.nextPaymentID,
		appointments:      make(map[int64]domain.Appointment, len(s.appointments)),
		payments:          make(map[int64]domain.Payment, len(s.payments)),
		events:            append([]domain.OutboxEvent(nil), s.events...),
	}
	for k, v := range s.appointments {
		snap.appointments[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAppointmentID = snap.nextAppointmentID
	s.nextPaymentID = snap.nextPaymentID
	s.appointments = snap.appointments
	s.payments = snap.payments
	s.events = snap.events
}

// Do выполняет fn эксклюзивно и откатывает изменения при ошибке
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// DoSerializable то же, что Do
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// DoReadOnly то же, что Do
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// Appointments репозиторий записей
func (s *Store) Appointments() *Appointments { return &Appointments{s: s} }

// Payments репозиторий оплат
func (s *Store) Payments() *Payments { return &Payments{s: s} }

// Outbox репозиторий событий
func (s *Store) Outbox() *Outbox { return &Outbox{s: s} }

// Put сохраняет запись как есть (подготовка данных теста)
func (s *Store) Put(a domain.Appointment) *domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == 0 {
		s.nextAppointmentID++
		a.ID = s.nextAppointmentID
	} else if a.ID > s.nextAppointmentID {
		s.nextAppointmentID = a.ID
	}
	s.appointments[a.ID] = a
	return &a
}

// Appointment возвращает копию записи
func (s *Store) Appointment(id int64) (domain.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	return a, ok
}

// AppointmentCount число записей
func (s *Store) AppointmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

// PaymentCount число оплат
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// Events копия outbox
func (s *Store) Events() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxEvent(nil), s.events...)
}

// EventTypes типы событий outbox в порядке добавления
func (s *Store) EventTypes() []string {
	events := s.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventType
	}
	return out
}

// Appointments реализация репозитория записей в памяти
type Appointments struct {
	s *Store
}

// Create проверяет то же ограничение пересечения, что и appointments_no_overlap
func (r *Appointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.Status.IsOccupying() {
		for _, other := range r.s.appointments {
			if other.BusinessID == a.BusinessID && other.Status.IsOccupying() && other.Interval().Overlaps(a.Interval()) {
				return nil, fmt.Errorf("%w: appointments_no_overlap", appointmentRepo.ErrOverlap)
			}
		}
	}

	r.s.nextAppointmentID++
	a.ID = r.s.nextAppointmentID
	a.CreatedAt = r.s.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.s.appointments[a.ID] = *a

	created := *a
	return &created, nil
}

func (r *Appointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *Appointments) GetByBusinessWithFilter(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Appointment, 0)
	for _, a := range r.s.appointments {
		if a.BusinessID != filter.BusinessID {
			continue
		}
		if filter.From != nil && !a.EndTime.After(*filter.From) {
			continue
		}
		if filter.To != nil && !a.StartTime.Before(*filter.To) {
			continue
		}
		if filter.Status != nil {
			if a.Status != *filter.Status {
				continue
			}
		} else if !filter.IncludeInactive && !a.Status.IsOccupying() {
			continue
		}
		if filter.ExcludeID != nil && a.ID == *filter.ExcludeID {
			continue
		}
		a := a
		out = append(out, &a)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Appointments) UpdateStatus(_ context.Context, id int64, from, to domain.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok || a.Status != from {
		return appointmentRepo.ErrStatusMismatch
	}
	a.Status = to
	a.UpdatedAt = r.s.Now().UTC()
	r.s.appointments[id] = a
	return nil
}

func (r *Appointments) Cancel(_ context.Context, id int64, from domain.AppointmentStatus, reason *string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok || a.Status != from {
		return appointmentRepo.ErrStatusMismatch
	}
	cancelledAt := at.UTC()
	a.Status = domain.StatusCancelled
	a.CancellationReason = reason
	a.CancelledAt = &cancelledAt
	a.UpdatedAt = r.s.Now().UTC()
	r.s.appointments[id] = a
	return nil
}

func (r *Appointments) CancelExpiredHolds(_ context.Context, filter domain.ExpiredHoldsFilter, at time.Time) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reason := domain.HoldExpiredReason
	cancelledAt := at.UTC()
	window := domain.Interval{Start: filter.From, End: filter.To}

	ids := make([]int64, 0)
	for id, a := range r.s.appointments {
		if a.BusinessID != filter.BusinessID || a.Status != domain.StatusPending {
			continue
		}
		if filter.ExcludeID != nil && id == *filter.ExcludeID {
			continue
		}
		if a.CreatedAt.After(filter.CreatedBefore) || !a.Interval().Overlaps(window) {
			continue
		}
		a.Status = domain.StatusCancelled
		a.CancellationReason = &reason
		a.CancelledAt = &cancelledAt
		r.s.appointments[id] = a
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Payments реализация репозитория оплат в памяти
type Payments struct {
	s *Store
}

// Create проверяет уникальность appointment_id
func (r *Payments) Create(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.payments[p.AppointmentID]; exists {
		return nil, fmt.Errorf("%w: appointment_id=%d", paymentRepo.ErrAlreadyExists, p.AppointmentID)
	}

	r.s.nextPaymentID++
	p.ID = r.s.nextPaymentID
	p.CreatedAt = r.s.Now().UTC()
	r.s.payments[p.AppointmentID] = *p

	created := *p
	return &created, nil
}

func (r *Payments) GetByAppointmentID(_ context.Context, appointmentID int64) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[appointmentID]
	if !ok {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	return &p, nil
}

// Outbox реализация outbox в памяти
type Outbox struct {
	s *Store
}

func (r *Outbox) Add(_ context.Context, aggregateType string, aggregateID int64, eventType string, payload interface{}) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id := uuid.New()
	r.s.events = append(r.s.events, domain.OutboxEvent{
		ID:            id,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     r.s.Now().UTC(),
	})
	return id, nil
}
