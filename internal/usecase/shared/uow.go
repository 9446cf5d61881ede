package shared

import (
	"context"
	"time"

	"tablebook/internal/domain/customer"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/table"
	"tablebook/internal/domain/user"
	"tablebook/internal/domain/waitlist"
	"tablebook/internal/infra/db"

	"github.com/google/uuid"
)

// AfterCommit runs only once the surrounding transaction has committed.
// Cache invalidation registers here so a rolled-back write never evicts.
type AfterCommit func(ctx context.Context)

type UnitOfWork interface {
	// Within: read-committed transaction with retry on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx, after func(AfterCommit)) error) error
	// WithDB: single statements using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
}

type Tx interface {
	Reservations() ReservationRepository
	Tables() TableRepository
	Customers() CustomerRepository
	Waitlist() WaitlistRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Users() UserRepository
	DB() db.DBTX
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) error
	Update(ctx context.Context, res *reservation.Reservation) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*reservation.Reservation, error)
	// ListForTableBetween returns every reservation touching the window;
	// callers run the availability check over it. Must be called with the
	// table row already locked.
	ListForTableBetween(ctx context.Context, tableID uuid.UUID, from, to time.Time) ([]*reservation.Reservation, error)
	// ListSweepCandidates locks (SKIP LOCKED) reservations still awaiting a
	// guest whose start time is before the cutoff.
	ListSweepCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*reservation.Reservation, error)
}

type TableRepository interface {
	Create(ctx context.Context, t *table.Table) error
	Update(ctx context.Context, t *table.Table) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*table.Table, error)
	// LockByID serializes all scheduling for one table: concurrent
	// create/move requests queue on this row lock.
	LockByID(ctx context.Context, restaurantID, id uuid.UUID) (*table.Table, error)
	HasBlockingReservations(ctx context.Context, tableID uuid.UUID) (bool, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, c *customer.Customer) error
	Update(ctx context.Context, c *customer.Customer) error
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*customer.Customer, error)
	// ApplyEffects applies lifecycle stat deltas atomically in SQL.
	ApplyEffects(ctx context.Context, restaurantID, id uuid.UUID, eff reservation.Effects) error
}

type WaitlistRepository interface {
	Create(ctx context.Context, e *waitlist.Entry) error
	Update(ctx context.Context, e *waitlist.Entry) error
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*waitlist.Entry, error)
	// ListActiveForUpdate locks the restaurant's active queue so position
	// assignment and renumbering cannot interleave.
	ListActiveForUpdate(ctx context.Context, restaurantID uuid.UUID) ([]*waitlist.Entry, error)
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	Get(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, key, userID uuid.UUID, resultID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, restaurantID uuid.UUID, kind, topic string, payload []byte, runAt time.Time) error
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email user.Email) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}
