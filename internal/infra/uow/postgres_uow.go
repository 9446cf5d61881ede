package uow

import (
	"context"

	"tablebook/internal/infra/db"
	"tablebook/internal/infra/repository"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxRetries = 3

type PostgresUnitOfWork struct {
	pool *pgxpool.Pool
}

func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool}
}

var _ shared.UnitOfWork = (*PostgresUnitOfWork)(nil)

// Within runs fn in a read-committed transaction, retrying serialization
// failures and deadlocks. After-commit hooks registered through fn's after
// callback run once, only if the commit succeeded.
func (u *PostgresUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		hooks, err := u.runOnce(ctx, fn)
		if err == nil {
			for _, hook := range hooks {
				hook(ctx)
			}
			return nil
		}
		if !db.IsRetryable(err) {
			return err
		}
		lastErr = err
	}
	return errs.Wrap(lastErr, "transaction retries exhausted")
}

func (u *PostgresUnitOfWork) runOnce(ctx context.Context, fn func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error) ([]shared.AfterCommit, error) {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, errs.Wrap(err, "failed to begin transaction")
	}
	defer pgxTx.Rollback(ctx) //nolint:errcheck

	var hooks []shared.AfterCommit
	after := func(h shared.AfterCommit) {
		hooks = append(hooks, h)
	}

	if err := fn(ctx, newTx(pgxTx), after); err != nil {
		return nil, err
	}
	if err := pgxTx.Commit(ctx); err != nil {
		return nil, errs.Wrap(err, "failed to commit transaction")
	}
	return hooks, nil
}

func (u *PostgresUnitOfWork) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

// tx hands out repositories bound to one pgx transaction.
type tx struct {
	dbtx db.DBTX

	reservations  *repository.ReservationRepository
	tables        *repository.TableRepository
	customers     *repository.CustomerRepository
	waitlist      *repository.WaitlistRepository
	idempotency   *repository.IdempotencyRepository
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
}

func newTx(dbtx db.DBTX) *tx {
	return &tx{
		dbtx:          dbtx,
		reservations:  repository.NewReservationRepository(dbtx),
		tables:        repository.NewTableRepository(dbtx),
		customers:     repository.NewCustomerRepository(dbtx),
		waitlist:      repository.NewWaitlistRepository(dbtx),
		idempotency:   repository.NewIdempotencyRepository(dbtx),
		notifications: repository.NewNotificationRepository(dbtx),
		users:         repository.NewUserRepository(dbtx),
	}
}

var _ shared.Tx = (*tx)(nil)

func (t *tx) Reservations() shared.ReservationRepository   { return t.reservations }
func (t *tx) Tables() shared.TableRepository               { return t.tables }
func (t *tx) Customers() shared.CustomerRepository         { return t.customers }
func (t *tx) Waitlist() shared.WaitlistRepository          { return t.waitlist }
func (t *tx) Idempotency() shared.IdempotencyRepository    { return t.idempotency }
func (t *tx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *tx) Users() shared.UserRepository                 { return t.users }
func (t *tx) DB() db.DBTX                                  { return t.dbtx }
