package appointment

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

var start = time.Date(2025, time.June, 2, 17, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := dbmetrics.Wrap(sqlDB, nil)
	return NewRepository(db), db, mock
}

func txContext(t *testing.T, db *dbmetrics.DB, mock sqlmock.Sqlmock) context.Context {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	return dbmetrics.WithTx(context.Background(), tx)
}

func appointmentRow(id int64, status domain.AppointmentStatus) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(
		id, int64(7), int64(100), int64(3), start, start.Add(time.Hour), string(status),
		"Haircut", int64(12000), nil, nil, nil, start.Add(-time.Hour), start.Add(-time.Hour),
	)
}

func TestCreate(t *testing.T) {
	repo, _, mock := newRepo(t)
	created := start.Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(int64(7), int64(100), int64(3), start, start.Add(time.Hour), domain.StatusPending, "Haircut", int64(12000), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), created, created))

	a, err := repo.Create(context.Background(), &domain.Appointment{
		BusinessID:  7,
		ClientID:    100,
		ServiceID:   3,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      domain.StatusPending,
		ServiceName: "Haircut",
		PriceCents:  12000,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), a.ID)
	assert.Equal(t, created, a.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ExclusionViolation(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "appointments_no_overlap"})

	_, err := repo.Create(context.Background(), &domain.Appointment{StartTime: start, EndTime: start.Add(time.Hour)})

	assert.ErrorIs(t, err, ErrOverlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM appointments WHERE id = \$1$`).
		WithArgs(int64(11)).
		WillReturnRows(appointmentRow(11, domain.StatusConfirmed))

	a, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, a.Status)
	assert.Equal(t, start, a.StartTime)
	assert.Nil(t, a.Notes)
	assert.Equal(t, 60, a.DurationMinutes())

	mock.ExpectQuery("SELECT .* FROM appointments").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), 12)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_LocksInsideTransaction(t *testing.T) {
	repo, db, mock := newRepo(t)
	ctx := txContext(t, db, mock)

	mock.ExpectQuery(`SELECT .* FROM appointments WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(11)).
		WillReturnRows(appointmentRow(11, domain.StatusPending))

	_, err := repo.GetByID(ctx, 11)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByBusinessWithFilter_OccupyingWindowForUpdate(t *testing.T) {
	repo, db, mock := newRepo(t)
	ctx := txContext(t, db, mock)
	from, to := start.Add(-12*time.Hour), start.Add(12*time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM appointments WHERE business_id = $1 AND end_time > $2 AND start_time < $3 AND status IN ($4,$5) AND id <> $6 ORDER BY start_time ASC, id ASC FOR UPDATE")).
		WithArgs(int64(7), from, to, "pending", "confirmed", int64(11)).
		WillReturnRows(appointmentRow(10, domain.StatusConfirmed).AddRow(
			int64(12), int64(7), int64(101), int64(3), start.Add(2*time.Hour), start.Add(3*time.Hour), "pending",
			"Haircut", int64(12000), "window seat", nil, nil, start, start,
		))

	list, err := repo.GetByBusinessWithFilter(ctx, domain.AppointmentsFilter{
		BusinessID: 7,
		From:       &from,
		To:         &to,
		ExcludeID:  ptr.Ptr(int64(11)),
	})

	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[1].Notes)
	assert.Equal(t, "window seat", *list[1].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByBusinessWithFilter_StatusWithoutLock(t *testing.T) {
	repo, _, mock := newRepo(t)
	status := domain.StatusConfirmed

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE business_id = $1 AND status = $2 ORDER BY start_time ASC, id ASC")).
		WithArgs(int64(7), domain.StatusConfirmed).
		WillReturnRows(sqlmock.NewRows(columns))

	list, err := repo.GetByBusinessWithFilter(context.Background(), domain.AppointmentsFilter{BusinessID: 7, Status: &status})
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")).
		WithArgs(domain.StatusConfirmed, int64(11), domain.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), 11, domain.StatusPending, domain.StatusConfirmed))

	mock.ExpectExec("UPDATE appointments").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), 11, domain.StatusPending, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrStatusMismatch)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel(t *testing.T) {
	repo, _, mock := newRepo(t)
	at := start.Add(-time.Hour)
	reason := "client called"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1, cancellation_reason = $2, cancelled_at = $3")).
		WithArgs(domain.StatusCancelled, &reason, at, int64(11), domain.StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), 11, domain.StatusConfirmed, &reason, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelExpiredHolds(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := start.Add(-2 * time.Hour)
	from, to := start.Add(-12*time.Hour), start.Add(12*time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE appointments SET status = $1, cancellation_reason = $2")).
		WithArgs(domain.StatusCancelled, domain.HoldExpiredReason, now, int64(7), domain.StatusPending,
			now.Add(-15*time.Minute), from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)).AddRow(int64(5)))

	ids, err := repo.CancelExpiredHolds(context.Background(), domain.ExpiredHoldsFilter{
		BusinessID:    7,
		CreatedBefore: now.Add(-15 * time.Minute),
		From:          from,
		To:            to,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelExpiredHolds_ExcludeID(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := start.Add(-2 * time.Hour)
	from, to := start.Add(-15*time.Minute), start.Add(75*time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("AND start_time < $8 AND id <> $9 RETURNING id")).
		WithArgs(domain.StatusCancelled, domain.HoldExpiredReason, now, int64(7), domain.StatusPending,
			now.Add(-15*time.Minute), from, to, int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := repo.CancelExpiredHolds(context.Background(), domain.ExpiredHoldsFilter{
		BusinessID:    7,
		CreatedBefore: now.Add(-15 * time.Minute),
		From:          from,
		To:            to,
		ExcludeID:     ptr.Ptr(int64(12)),
	}, now)
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
