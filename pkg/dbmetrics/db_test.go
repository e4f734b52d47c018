package dbmetrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedQuery struct {
	operation string
	failed    bool
}

type fakeRecorder struct {
	mu      sync.Mutex
	queries []recordedQuery
	pools   int
}

func (r *fakeRecorder) ObserveDBQuery(operation string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, recordedQuery{operation: operation, failed: err != nil})
}

func (r *fakeRecorder) SetPoolStats(int, int, int, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools++
}

func TestDB_RecordsQueries(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	rec := &fakeRecorder{}
	db := Wrap(sqlDB, rec)
	ctx := context.Background()

	mock.ExpectExec("UPDATE appointments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id").WillReturnError(errors.New("boom"))

	_, err = db.ExecContext(ctx, "UPDATE appointments SET status = $1", "confirmed")
	require.NoError(t, err)
	_, err = db.QueryContext(ctx, "SELECT id FROM appointments")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []recordedQuery{{"update", false}, {"select", true}}, rec.queries)
}

func TestDB_TransactionInContext(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := Wrap(sqlDB, nil)
	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))
	assert.Equal(t, DBExecutor(db), GetExecutor(ctx, db))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM outbox_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Equal(t, DBExecutor(tx), GetExecutor(txCtx, db))

	_, err = GetExecutor(txCtx, db).ExecContext(txCtx, "DELETE FROM outbox_events")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWrapWithDefault_StopsCollector(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	rec := &fakeRecorder{}
	stop := make(chan struct{})
	WrapWithDefault(sqlDB, rec, stop)

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.pools > 0
	}, time.Second, 10*time.Millisecond)
	close(stop)
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "select", operationOf("  SELECT 1"))
	assert.Equal(t, "insert", operationOf("insert into x"))
	assert.Equal(t, "other", operationOf("WITH cte AS (SELECT 1) SELECT * FROM cte"))
	assert.Equal(t, "other", operationOf(""))
}
