// Package txmanager выполняет функции в транзакции PostgreSQL, передавая её через context
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
)

const (
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 20 * time.Millisecond
	defaultMaxInterval     = 500 * time.Millisecond
)

// SQLSTATE кодов, после которых транзакцию безопасно повторить
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var (
	// ErrBeginTx ошибка начала транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")
	// ErrCommitTx ошибка фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryRecorder получает уведомления о повторах (реализуется *metrics.Metrics)
type RetryRecorder interface {
	TxRetry()
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// TransactionManager менеджер транзакций
type TransactionManager struct {
	db              TxBeginner
	maxAttempts     uint
	initialInterval time.Duration
	recorder        RetryRecorder
	logger          Logger
}

// Option настройка менеджера
type Option func(*TransactionManager)

// WithMaxAttempts задает общее число попыток (включая первую)
func WithMaxAttempts(n int) Option {
	return func(m *TransactionManager) {
		if n > 0 {
			m.maxAttempts = uint(n)
		}
	}
}

// WithInitialInterval задает первую паузу между попытками
func WithInitialInterval(d time.Duration) Option {
	return func(m *TransactionManager) {
		if d > 0 {
			m.initialInterval = d
		}
	}
}

// WithRetryRecorder подключает счетчик повторов
func WithRetryRecorder(r RetryRecorder) Option {
	return func(m *TransactionManager) {
		m.recorder = r
	}
}

// WithLogger подключает логгер для повторов
func WithLogger(l Logger) Option {
	return func(m *TransactionManager) {
		m.logger = l
	}
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner, opts ...Option) *TransactionManager {
	m := &TransactionManager{
		db:              db,
		maxAttempts:     DefaultMaxAttempts,
		initialInterval: DefaultInitialInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE.
// При serialization_failure и deadlock_detected транзакция целиком повторяется,
// поэтому fn не должна иметь побочных эффектов вне БД.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции REPEATABLE READ
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.initialInterval
	policy.MaxInterval = defaultMaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := m.attempt(ctx, opts, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if IsTransient(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(m.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			if m.recorder != nil {
				m.recorder.TxRetry()
			}
			if m.logger != nil {
				m.logger.Warn("txmanager: retrying transaction in %s: %v", next, err)
			}
		}),
	)
	return err
}

func (m *TransactionManager) attempt(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}
	return nil
}

// IsTransient возвращает true для ошибок PostgreSQL, после которых транзакцию можно повторить
func IsTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	default:
		return false
	}
}
