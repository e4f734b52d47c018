package transition_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/storagetest"
	directoryClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/directory"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
)

type fakeDirectory struct {
	business *domain.Business
}

func (f *fakeDirectory) GetBusiness(_ context.Context, id int64) (*domain.Business, error) {
	if f.business.ID != id {
		return nil, directoryClient.ErrBusinessNotFound
	}
	return f.business, nil
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var hours = domain.DaySchedule{IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"}

func pdt(hour, min int) time.Time {
	return time.Date(2025, time.June, 2, hour+7, min, 0, 0, time.UTC)
}

type fixture struct {
	store   *storagetest.Store
	metrics *metrics.Metrics
	uc      *UseCase
}

func newFixture(t *testing.T, now time.Time, settings Settings) *fixture {
	t.Helper()
	store := storagetest.New()
	store.Now = func() time.Time { return now }

	dir := &fakeDirectory{business: &domain.Business{
		ID:            7,
		TimeZone:      "America/Los_Angeles",
		BufferMinutes: 15,
		WorkingHours:  domain.WorkingHours{Monday: hours},
	}}
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")

	uc := NewUseCase(store.Appointments(), store.Outbox(), dir, availability.NewEngine(tzconv.New(), 15),
		store, m, settings, logger.NewNop())
	uc.timeProvider = fixedTime{now}
	return &fixture{store: store, metrics: m, uc: uc}
}

func (f *fixture) put(start time.Time, status domain.AppointmentStatus) *domain.Appointment {
	return f.store.Put(domain.Appointment{
		BusinessID: 7, ClientID: 100, ServiceID: 3,
		StartTime: start, EndTime: start.Add(time.Hour),
		Status: status, PriceCents: 12000, CreatedAt: pdt(6, 0),
	})
}

func TestConfirm(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{})
	a := f.put(pdt(10, 0), domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{AppointmentID: a.ID, TargetStatus: domain.StatusConfirmed})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, domain.StatusConfirmed, resp.Appointment.Status)

	stored, _ := f.store.Appointment(a.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, []string{domain.EventAppointmentConfirmed}, f.store.EventTypes())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatusTransitions.WithLabelValues("confirmed")))
}

func TestConfirm_ConflictWithBufferedNeighbour(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{})
	a := f.put(pdt(10, 0), domain.StatusPending)
	// соседняя запись заканчивается в 09:50, буфер 15 минут перекрывает 10:00
	f.store.Put(domain.Appointment{BusinessID: 7, StartTime: pdt(9, 0), EndTime: pdt(9, 50), Status: domain.StatusConfirmed})

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: a.ID, TargetStatus: domain.StatusConfirmed})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.True(t, domain.IsRetryable(err))

	stored, _ := f.store.Appointment(a.ID)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Empty(t, f.store.Events())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingConflicts.WithLabelValues("confirm")))
}

func TestConfirm_ExpiredHoldOnFreeSlot(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{PendingHold: 15 * time.Minute})
	a := f.put(pdt(10, 0), domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{AppointmentID: a.ID, TargetStatus: domain.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, resp.Appointment.Status)
	// собственная просроченная запись не отменяется
	assert.Equal(t, []string{domain.EventAppointmentConfirmed}, f.store.EventTypes())
}

func TestConfirm_CancelsExpiredNeighbourHold(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{PendingHold: 15 * time.Minute})
	a := f.put(pdt(10, 0), domain.StatusPending)
	stale := f.store.Put(domain.Appointment{
		BusinessID: 7, ClientID: 101, ServiceID: 3,
		StartTime: pdt(10, 30), EndTime: pdt(11, 30),
		Status: domain.StatusPending, CreatedAt: pdt(6, 0),
	})

	resp, err := f.uc.Execute(context.Background(), &Request{AppointmentID: a.ID, TargetStatus: domain.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, resp.Appointment.Status)

	released, _ := f.store.Appointment(stale.ID)
	assert.Equal(t, domain.StatusCancelled, released.Status)
	require.NotNil(t, released.CancellationReason)
	assert.Equal(t, domain.HoldExpiredReason, *released.CancellationReason)

	events := f.store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventAppointmentCancelled, events[0].EventType)
	assert.Equal(t, stale.ID, events[0].AggregateID)
	assert.Equal(t, domain.EventAppointmentConfirmed, events[1].EventType)
}

func TestConfirm_FreshNeighbourHoldStillBlocks(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{PendingHold: 15 * time.Minute})
	a := f.put(pdt(10, 0), domain.StatusPending)
	fresh := f.store.Put(domain.Appointment{
		BusinessID: 7, ClientID: 101, ServiceID: 3,
		StartTime: pdt(10, 30), EndTime: pdt(11, 30),
		Status: domain.StatusPending, CreatedAt: pdt(6, 55),
	})

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: a.ID, TargetStatus: domain.StatusConfirmed})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	stored, _ := f.store.Appointment(fresh.ID)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Empty(t, f.store.Events())
}

func TestConfirm_StartAlreadyPassed(t *testing.T) {
	f := newFixture(t, pdt(10, 30), Settings{})
	a := f.put(pdt(10, 0), domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: a.ID, TargetStatus: domain.StatusConfirmed})
	assert.ErrorIs(t, err, ErrSlotNoLongerValid)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{})
	a := f.put(pdt(10, 0), domain.StatusConfirmed)

	resp, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: a.ID,
		TargetStatus:  domain.StatusCancelled,
		Reason:        ptr.Ptr("client is sick"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Changed)

	stored, _ := f.store.Appointment(a.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancellationReason)
	assert.Equal(t, "client is sick", *stored.CancellationReason)
	require.NotNil(t, stored.CancelledAt)
	assert.Equal(t, pdt(7, 0), *stored.CancelledAt)

	// повторная отмена успешна и ничего не меняет
	resp, err = f.uc.Execute(context.Background(), &Request{AppointmentID: a.ID, TargetStatus: domain.StatusCancelled})
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Equal(t, domain.StatusCancelled, resp.Appointment.Status)
	assert.Equal(t, []string{domain.EventAppointmentCancelled}, f.store.EventTypes())
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{})
	confirmed := f.put(pdt(10, 0), domain.StatusConfirmed)
	completed := f.put(pdt(12, 0), domain.StatusCompleted)
	cancelled := f.put(pdt(14, 0), domain.StatusCancelled)

	tests := []struct {
		name   string
		id     int64
		target domain.AppointmentStatus
		want   error
	}{
		{name: "confirmed to completed", id: confirmed.ID, target: domain.StatusCompleted, want: ErrCompleteViaCheckout},
		{name: "confirm twice", id: confirmed.ID, target: domain.StatusConfirmed, want: ErrInvalidTransition},
		{name: "cancel completed", id: completed.ID, target: domain.StatusCancelled, want: ErrInvalidTransition},
		{name: "confirm cancelled", id: cancelled.ID, target: domain.StatusConfirmed, want: ErrInvalidTransition},
		{name: "back to pending", id: confirmed.ID, target: domain.StatusPending, want: ErrInvalidTransition},
		{name: "unknown status", id: confirmed.ID, target: "archived", want: ErrInvalidInput},
		{name: "missing appointment", id: 999, target: domain.StatusCancelled, want: ErrAppointmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: tt.id, TargetStatus: tt.target})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	for _, a := range []*domain.Appointment{confirmed, completed, cancelled} {
		stored, _ := f.store.Appointment(a.ID)
		assert.Equal(t, a.Status, stored.Status, "status must not change")
	}
	assert.Empty(t, f.store.Events())
}

func TestReasonOnlyForCancellation(t *testing.T) {
	f := newFixture(t, pdt(7, 0), Settings{})
	a := f.put(pdt(10, 0), domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: a.ID,
		TargetStatus:  domain.StatusConfirmed,
		Reason:        ptr.Ptr("why not"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
