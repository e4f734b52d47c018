package create_appointment

import (
	"context"
	"sync"
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
	service  *domain.Service
}

func (f *fakeDirectory) GetBusiness(_ context.Context, id int64) (*domain.Business, error) {
	if f.business.ID != id {
		return nil, directoryClient.ErrBusinessNotFound
	}
	return f.business, nil
}

func (f *fakeDirectory) GetService(_ context.Context, _, serviceID int64) (*domain.Service, error) {
	if f.service.ID != serviceID {
		return nil, directoryClient.ErrServiceNotFound
	}
	return f.service, nil
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// permissiveEngine пропускает любую проверку, чтобы дойти до ограничения хранилища
type permissiveEngine struct {
	*availability.Engine
}

func (permissiveEngine) Check(availability.Query, time.Time) error { return nil }

var hours = domain.DaySchedule{IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"}

func pdt(hour, min int) time.Time {
	return time.Date(2025, time.June, 2, hour+7, min, 0, 0, time.UTC)
}

type fixture struct {
	store   *storagetest.Store
	metrics *metrics.Metrics
	uc      *UseCase
}

func newFixture(t *testing.T, settings Settings) *fixture {
	t.Helper()
	store := storagetest.New()
	now := pdt(7, 0)
	store.Now = func() time.Time { return now }

	dir := &fakeDirectory{
		business: &domain.Business{
			ID:            7,
			TimeZone:      "America/Los_Angeles",
			BufferMinutes: 15,
			WorkingHours:  domain.WorkingHours{Monday: hours},
		},
		service: &domain.Service{ID: 3, BusinessID: 7, Name: "Haircut", DurationMinutes: 60, PriceCents: 12000},
	}
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")

	uc := NewUseCase(store.Appointments(), store.Outbox(), dir, availability.NewEngine(tzconv.New(), 15),
		store, m, settings, logger.NewNop())
	uc.timeProvider = fixedTime{now}

	return &fixture{store: store, metrics: m, uc: uc}
}

func request(start time.Time) *Request {
	return &Request{BusinessID: 7, ClientID: 100, ServiceID: 3, StartTime: start, InitialStatus: domain.StatusPending}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, Settings{})
	req := request(pdt(11, 15))
	req.Notes = ptr.Ptr("first visit")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	a := resp.Appointment
	assert.NotZero(t, a.ID)
	assert.Equal(t, pdt(11, 15), a.StartTime)
	assert.Equal(t, pdt(12, 15), a.EndTime)
	assert.Equal(t, domain.StatusPending, a.Status)
	assert.Equal(t, "Haircut", a.ServiceName)
	assert.Equal(t, int64(12000), a.PriceCents)
	assert.Equal(t, []string{domain.EventAppointmentCreated}, f.store.EventTypes())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AppointmentsCreated.WithLabelValues("pending")))
}

func TestExecute_BufferedConflict(t *testing.T) {
	f := newFixture(t, Settings{})
	f.store.Put(domain.Appointment{BusinessID: 7, StartTime: pdt(10, 0), EndTime: pdt(11, 0), Status: domain.StatusConfirmed})

	for _, start := range []time.Time{pdt(9, 0), pdt(9, 45), pdt(10, 30), pdt(11, 0)} {
		_, err := f.uc.Execute(context.Background(), request(start))
		assert.ErrorIs(t, err, ErrSlotNotAvailable, start.String())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.True(t, domain.IsRetryable(err))
	}

	assert.Equal(t, 1, f.store.AppointmentCount())
	assert.Empty(t, f.store.Events())
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.BookingConflicts.WithLabelValues("create")))

	_, err := f.uc.Execute(context.Background(), request(pdt(11, 15)))
	require.NoError(t, err)
}

func TestExecute_InvalidSlots(t *testing.T) {
	f := newFixture(t, Settings{MinNotice: 3 * time.Hour})

	tests := []struct {
		name  string
		start time.Time
		want  error
	}{
		{name: "off grid", start: pdt(11, 10), want: ErrInvalidTimeSlot},
		{name: "ends after closing", start: pdt(16, 15), want: ErrInvalidTimeSlot},
		{name: "before opening", start: pdt(8, 45), want: ErrInvalidTimeSlot},
		{name: "closed day", start: pdt(11, 0).AddDate(0, 0, 1), want: ErrInvalidTimeSlot},
		{name: "inside min notice", start: pdt(9, 45), want: ErrTooLateToBook},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), request(tt.start))
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, domain.IsRetryable(err))
		})
	}
	assert.Zero(t, f.store.AppointmentCount())
}

func TestExecute_ValidationErrors(t *testing.T) {
	f := newFixture(t, Settings{AdvanceBookingDays: 3})

	req := request(pdt(11, 15))
	req.InitialStatus = domain.StatusCompleted
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = request(pdt(11, 15))
	req.ClientID = 0
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = request(pdt(11, 15))
	req.BusinessID = 8
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	req = request(pdt(11, 15))
	req.ServiceID = 4
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = f.uc.Execute(context.Background(), request(pdt(11, 15).AddDate(0, 0, 7)))
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_ExpiredHoldReleasesSlot(t *testing.T) {
	f := newFixture(t, Settings{PendingHold: 15 * time.Minute})
	stale := f.store.Put(domain.Appointment{
		BusinessID: 7, StartTime: pdt(11, 15), EndTime: pdt(12, 15), Status: domain.StatusPending,
		CreatedAt: pdt(6, 0),
	})

	resp, err := f.uc.Execute(context.Background(), request(pdt(11, 15)))
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, resp.Appointment.ID)

	old, ok := f.store.Appointment(stale.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusCancelled, old.Status)
	require.NotNil(t, old.CancellationReason)
	assert.Equal(t, domain.HoldExpiredReason, *old.CancellationReason)
	assert.Equal(t, []string{domain.EventAppointmentCancelled, domain.EventAppointmentCreated}, f.store.EventTypes())
}

func TestExecute_FreshHoldBlocks(t *testing.T) {
	f := newFixture(t, Settings{PendingHold: 15 * time.Minute})
	f.store.Put(domain.Appointment{
		BusinessID: 7, StartTime: pdt(11, 15), EndTime: pdt(12, 15), Status: domain.StatusPending,
		CreatedAt: pdt(6, 50),
	})

	_, err := f.uc.Execute(context.Background(), request(pdt(11, 15)))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_StoreConstraintIsLastLine(t *testing.T) {
	f := newFixture(t, Settings{})
	f.uc.engine = permissiveEngine{availability.NewEngine(tzconv.New(), 15)}
	f.store.Put(domain.Appointment{BusinessID: 7, StartTime: pdt(11, 0), EndTime: pdt(12, 0), Status: domain.StatusConfirmed})

	_, err := f.uc.Execute(context.Background(), request(pdt(11, 30)))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingConflicts.WithLabelValues("store")))
	assert.Empty(t, f.store.Events(), "rolled back with the failed transaction")
}

func TestExecute_ConcurrentRequestsBookSlotOnce(t *testing.T) {
	f := newFixture(t, Settings{})
	const workers = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(client int64) {
			defer wg.Done()
			req := request(pdt(13, 0))
			req.ClientID = client
			_, err := f.uc.Execute(context.Background(), req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case domain.IsRetryable(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, f.store.AppointmentCount())
}
