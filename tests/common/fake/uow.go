//go:build unit

// Package fake provides an in-memory unit of work for command tests:
// the same interfaces the postgres implementation satisfies, backed by maps.
package fake

import (
	"context"
	"sync"
	"time"

	"tablebook/internal/domain/customer"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/table"
	"tablebook/internal/domain/user"
	"tablebook/internal/domain/waitlist"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type UnitOfWork struct {
	Tx *Tx

	mu             sync.Mutex
	CommittedHooks int
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{Tx: NewTx()}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error) error {
	var hooks []shared.AfterCommit
	after := func(h shared.AfterCommit) {
		hooks = append(hooks, h)
	}

	if err := fn(ctx, u.Tx, after); err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}
	u.mu.Lock()
	u.CommittedHooks += len(hooks)
	u.mu.Unlock()
	return nil
}

func (u *UnitOfWork) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

type Tx struct {
	ReservationRepo  *ReservationRepo
	TableRepo        *TableRepo
	CustomerRepo     *CustomerRepo
	WaitlistRepo     *WaitlistRepo
	IdempotencyRepo  *IdempotencyRepo
	NotificationRepo *NotificationRepo
	UserRepo         *UserRepo
}

func NewTx() *Tx {
	reservations := &ReservationRepo{byID: map[uuid.UUID]*reservation.Reservation{}}
	return &Tx{
		ReservationRepo:  reservations,
		TableRepo:        &TableRepo{byID: map[uuid.UUID]*table.Table{}, reservations: reservations},
		CustomerRepo:     &CustomerRepo{byID: map[uuid.UUID]*customer.Customer{}},
		WaitlistRepo:     &WaitlistRepo{byID: map[uuid.UUID]*waitlist.Entry{}},
		IdempotencyRepo:  &IdempotencyRepo{records: map[idemKey]*shared.IdempotencyRecord{}},
		NotificationRepo: &NotificationRepo{},
		UserRepo:         &UserRepo{byID: map[uuid.UUID]*user.User{}},
	}
}

func (t *Tx) Reservations() shared.ReservationRepository  { return t.ReservationRepo }
func (t *Tx) Tables() shared.TableRepository              { return t.TableRepo }
func (t *Tx) Customers() shared.CustomerRepository        { return t.CustomerRepo }
func (t *Tx) Waitlist() shared.WaitlistRepository         { return t.WaitlistRepo }
func (t *Tx) Idempotency() shared.IdempotencyRepository   { return t.IdempotencyRepo }
func (t *Tx) Notifications() shared.NotificationRepository { return t.NotificationRepo }
func (t *Tx) Users() shared.UserRepository                { return t.UserRepo }
func (t *Tx) DB() db.DBTX                                 { return nil }

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

type ReservationRepo struct {
	byID map[uuid.UUID]*reservation.Reservation

	// FailUpdate injects an Update error for specific reservations.
	FailUpdate map[uuid.UUID]error
}

func (r *ReservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	r.byID[res.ID()] = res
	return nil
}

func (r *ReservationRepo) Update(_ context.Context, res *reservation.Reservation) error {
	if err, ok := r.FailUpdate[res.ID()]; ok {
		return err
	}
	if _, ok := r.byID[res.ID()]; !ok {
		return notFound("reservation not found")
	}
	r.byID[res.ID()] = res
	return nil
}

func (r *ReservationRepo) Delete(_ context.Context, restaurantID, id uuid.UUID) error {
	res, ok := r.byID[id]
	if !ok || res.RestaurantID() != restaurantID {
		return notFound("reservation not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *ReservationRepo) FindByID(_ context.Context, restaurantID, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.byID[id]
	if !ok || res.RestaurantID() != restaurantID {
		return nil, notFound("reservation not found")
	}
	return res, nil
}

func (r *ReservationRepo) ListForTableBetween(_ context.Context, tableID uuid.UUID, from, to time.Time) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range r.byID {
		if res.TableID() != tableID {
			continue
		}
		if res.Interval().Start().Before(to) && res.Interval().End().After(from) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *ReservationRepo) ListSweepCandidates(_ context.Context, cutoff time.Time, limit int) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range r.byID {
		if res.Status() != reservation.StatusBooked && res.Status() != reservation.StatusConfirmed {
			continue
		}
		if res.Interval().Start().Before(cutoff) {
			out = append(out, res)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *ReservationRepo) All() []*reservation.Reservation {
	out := make([]*reservation.Reservation, 0, len(r.byID))
	for _, res := range r.byID {
		out = append(out, res)
	}
	return out
}

type TableRepo struct {
	byID         map[uuid.UUID]*table.Table
	reservations *ReservationRepo
	Deleted      []uuid.UUID
}

func (r *TableRepo) Put(t *table.Table) {
	r.byID[t.ID()] = t
}

func (r *TableRepo) Create(_ context.Context, t *table.Table) error {
	r.byID[t.ID()] = t
	return nil
}

func (r *TableRepo) Update(_ context.Context, t *table.Table) error {
	if _, ok := r.byID[t.ID()]; !ok {
		return notFound("table not found")
	}
	r.byID[t.ID()] = t
	return nil
}

func (r *TableRepo) Delete(_ context.Context, restaurantID, id uuid.UUID) error {
	t, ok := r.byID[id]
	if !ok || t.RestaurantID() != restaurantID {
		return notFound("table not found")
	}
	delete(r.byID, id)
	r.Deleted = append(r.Deleted, id)
	return nil
}

func (r *TableRepo) FindByID(_ context.Context, restaurantID, id uuid.UUID) (*table.Table, error) {
	t, ok := r.byID[id]
	if !ok || t.RestaurantID() != restaurantID {
		return nil, notFound("table not found")
	}
	return t, nil
}

func (r *TableRepo) LockByID(ctx context.Context, restaurantID, id uuid.UUID) (*table.Table, error) {
	return r.FindByID(ctx, restaurantID, id)
}

func (r *TableRepo) HasBlockingReservations(_ context.Context, tableID uuid.UUID) (bool, error) {
	for _, res := range r.reservations.byID {
		if res.TableID() == tableID && res.Status().Blocks() {
			return true, nil
		}
	}
	return false, nil
}

type AppliedEffects struct {
	CustomerID uuid.UUID
	Effects    reservation.Effects
}

type CustomerRepo struct {
	byID    map[uuid.UUID]*customer.Customer
	Applied []AppliedEffects
}

func (r *CustomerRepo) Put(c *customer.Customer) {
	r.byID[c.ID()] = c
}

func (r *CustomerRepo) Create(_ context.Context, c *customer.Customer) error {
	r.byID[c.ID()] = c
	return nil
}

func (r *CustomerRepo) Update(_ context.Context, c *customer.Customer) error {
	if _, ok := r.byID[c.ID()]; !ok {
		return notFound("customer not found")
	}
	r.byID[c.ID()] = c
	return nil
}

func (r *CustomerRepo) FindByID(_ context.Context, restaurantID, id uuid.UUID) (*customer.Customer, error) {
	c, ok := r.byID[id]
	if !ok || c.RestaurantID() != restaurantID {
		return nil, notFound("customer not found")
	}
	return c, nil
}

func (r *CustomerRepo) ApplyEffects(_ context.Context, _, id uuid.UUID, eff reservation.Effects) error {
	if eff.IsZero() {
		return nil
	}
	r.Applied = append(r.Applied, AppliedEffects{CustomerID: id, Effects: eff})
	return nil
}

type WaitlistRepo struct {
	byID map[uuid.UUID]*waitlist.Entry
}

func (r *WaitlistRepo) Put(e *waitlist.Entry) {
	r.byID[e.ID()] = e
}

func (r *WaitlistRepo) Create(_ context.Context, e *waitlist.Entry) error {
	r.byID[e.ID()] = e
	return nil
}

func (r *WaitlistRepo) Update(_ context.Context, e *waitlist.Entry) error {
	if _, ok := r.byID[e.ID()]; !ok {
		return notFound("waitlist entry not found")
	}
	r.byID[e.ID()] = e
	return nil
}

func (r *WaitlistRepo) FindByID(_ context.Context, restaurantID, id uuid.UUID) (*waitlist.Entry, error) {
	e, ok := r.byID[id]
	if !ok || e.RestaurantID() != restaurantID {
		return nil, notFound("waitlist entry not found")
	}
	return e, nil
}

func (r *WaitlistRepo) ListActiveForUpdate(_ context.Context, restaurantID uuid.UUID) ([]*waitlist.Entry, error) {
	var out []*waitlist.Entry
	for _, e := range r.byID {
		if e.RestaurantID() == restaurantID && e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

type IdempotencyRepo struct {
	records map[idemKey]*shared.IdempotencyRecord
}

func (r *IdempotencyRepo) TryInsert(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	k := idemKey{key: key, userID: userID}
	if _, ok := r.records[k]; ok {
		return infra.WrapRepoErr("duplicate idempotency key", nil, infra.KindDuplicateKey)
	}
	r.records[k] = &shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		Status:      shared.IdempotencyProcessing,
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (r *IdempotencyRepo) Get(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.records[idemKey{key: key, userID: userID}]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return rec, nil
}

func (r *IdempotencyRepo) MarkCompleted(_ context.Context, key, userID uuid.UUID, resultID uuid.UUID) error {
	rec, ok := r.records[idemKey{key: key, userID: userID}]
	if !ok {
		return notFound("idempotency key not found")
	}
	id := resultID
	rec.Status = shared.IdempotencyCompleted
	rec.ResultID = &id
	return nil
}

type NotificationJob struct {
	RestaurantID uuid.UUID
	Kind         string
	Topic        string
	Payload      []byte
	RunAt        time.Time
}

type NotificationRepo struct {
	Jobs []NotificationJob
}

func (r *NotificationRepo) CreateJob(_ context.Context, restaurantID uuid.UUID, kind, topic string, payload []byte, runAt time.Time) error {
	r.Jobs = append(r.Jobs, NotificationJob{
		RestaurantID: restaurantID,
		Kind:         kind,
		Topic:        topic,
		Payload:      payload,
		RunAt:        runAt,
	})
	return nil
}

type UserRepo struct {
	byID map[uuid.UUID]*user.User
}

func (r *UserRepo) Put(u *user.User) {
	r.byID[u.ID()] = u
}

func (r *UserRepo) FindByEmail(_ context.Context, email user.Email) (*user.User, error) {
	for _, u := range r.byID {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, notFound("user not found")
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, notFound("user not found")
	}
	return u, nil
}

func (r *UserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID) error {
	return nil
}

// RecordingInvalidator counts timeline evictions per restaurant-day.
type RecordingInvalidator struct {
	mu    sync.Mutex
	Calls []InvalidateCall
}

type InvalidateCall struct {
	RestaurantID uuid.UUID
	At           time.Time
}

func (r *RecordingInvalidator) InvalidateTimeline(_ context.Context, restaurantID uuid.UUID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, InvalidateCall{RestaurantID: restaurantID, At: at})
}
