package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
)

// Stores groups the repositories bound to one connection or transaction.
type Stores struct {
	Vehicles VehicleRepo
	Trips    TripRepo
	Cargos   CargoRepo
}

// NewStores binds all repositories to db.
func NewStores(db db) Stores {
	return Stores{
		Vehicles: NewVehicleRepo(db),
		Trips:    NewTripRepo(db),
		Cargos:   NewCargoRepo(db),
	}
}

// UnitOfWork is the storage boundary services depend on.
//
// Read runs fn against repositories on the shared pool; reads tolerate
// in-flight writes and take no locks.
//
// WithinTx runs fn inside one serializable transaction. It commits when fn
// returns nil and rolls back on any error, panic, timeout, or cancellation,
// so a validate-then-mutate sequence is never half applied.
type UnitOfWork interface {
	Read(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// beginner is satisfied by *pgxpool.Pool.
type beginner interface {
	db
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PgUnitOfWork implements UnitOfWork on a pgx pool.
type PgUnitOfWork struct {
	pool       beginner
	timeout    time.Duration
	maxRetries uint64
	backoff    time.Duration
}

// UnitOfWorkOption configures a PgUnitOfWork.
type UnitOfWorkOption func(*PgUnitOfWork)

// WithTimeout bounds every Read and WithinTx call, retries included.
func WithTimeout(d time.Duration) UnitOfWorkOption {
	return func(u *PgUnitOfWork) { u.timeout = d }
}

// WithMaxRetries sets how often a transaction that hit a serialization
// failure or deadlock is replayed.
func WithMaxRetries(n uint64) UnitOfWorkOption {
	return func(u *PgUnitOfWork) { u.maxRetries = n }
}

// NewUnitOfWork constructs a PgUnitOfWork. Pass *pgxpool.Pool in production.
func NewUnitOfWork(pool beginner, opts ...UnitOfWorkOption) *PgUnitOfWork {
	u := &PgUnitOfWork{
		pool:       pool,
		timeout:    5 * time.Second,
		maxRetries: 3,
		backoff:    10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Read runs fn with pool-bound repositories under the configured timeout.
func (u *PgUnitOfWork) Read(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	return fn(ctx, NewStores(u.pool))
}

// WithinTx runs fn in a serializable transaction, replaying it on
// serialization failures up to the configured retry count.
func (u *PgUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	b := retry.WithMaxRetries(u.maxRetries, retry.NewExponential(u.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := u.runOnce(ctx, fn)
		if err != nil && isRetryableConflict(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return classify(err)
	}
	return err
}

func (u *PgUnitOfWork) runOnce(ctx context.Context, fn func(ctx context.Context, s Stores) error) (err error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("repo.UnitOfWork: begin: %w", classify(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			// Detached so ROLLBACK is still sent after ctx is cancelled.
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(ctx, NewStores(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.UnitOfWork: commit: %w", classify(err))
	}
	return nil
}
