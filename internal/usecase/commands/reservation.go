package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/schedule"
	"tablebook/internal/domain/table"
	reqdto "tablebook/internal/handler/dto/request"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrTableNotFound           = errs.New("table not found")
	ErrReservationNotFound     = errs.New("reservation not found")
	ErrCustomerNotFound        = errs.New("customer not found")
	ErrInvalidTimeSlot         = errs.New("invalid time slot")
	ErrPastTime                = errs.New("time is in the past")
	ErrReservationConflict     = errs.New("reservation conflict")
	ErrIllegalTransition       = errs.New("illegal status transition")
	ErrInvalidAction           = errs.New("invalid lifecycle action")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrDuplicateRequest        = errs.New("duplicate request with different payload")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// ConflictError reports which reservation blocks the requested window, so
// the client can render the collision on the grid.
type ConflictError struct {
	ConflictingID uuid.UUID
	TableID       uuid.UUID
	StartTime     time.Time
	EndTime       time.Time
	Status        string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("table %s already reserved %s to %s (%s)",
		e.TableID, e.StartTime.Format(time.RFC3339), e.EndTime.Format(time.RFC3339), e.Status)
}

func (e *ConflictError) Unwrap() error { return ErrReservationConflict }

type CreateReservationResult struct {
	ID         uuid.UUID
	Warnings   []string
	IsReplayed bool
}

type MoveReservationResult struct {
	Warnings []string
}

type ReservationCommands interface {
	Create(ctx context.Context, restaurantID, userID, idempotencyKey uuid.UUID, req reqdto.CreateReservationRequest) (*CreateReservationResult, error)
	Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateReservationRequest) error
	Move(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.MoveReservationRequest) (*MoveReservationResult, error)
	ChangeStatus(ctx context.Context, restaurantID, id uuid.UUID, action string) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

type reservationCommandsImpl struct {
	uow         shared.UnitOfWork
	invalidator shared.TimelineInvalidator
	grid        schedule.Grid
	clock       clock.Clock
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	invalidator shared.TimelineInvalidator,
	cfg config.ScheduleConfig,
	clk clock.Clock,
) (ReservationCommands, error) {
	grid, err := schedule.NewGrid(cfg.DayStartHour, cfg.SlotMinutes)
	if err != nil {
		return nil, err
	}
	return &reservationCommandsImpl{
		uow:         uow,
		invalidator: invalidator,
		grid:        grid,
		clock:       clk,
	}, nil
}

func (r *reservationCommandsImpl) Create(
	ctx context.Context,
	restaurantID, userID, idempotencyKey uuid.UUID,
	req reqdto.CreateReservationRequest,
) (*CreateReservationResult, error) {
	interval, err := r.parseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	partySize, err := reservation.NewPartySize(req.PartySize)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}
	guestName, err := reservation.NewGuestName(req.GuestName)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	requestHash := calculateRequestHash(req)
	now := r.clock.Now()

	var result CreateReservationResult
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error {
		replayed, claimErr := r.claimIdempotencyKey(ctx, tx, idempotencyKey, userID, requestHash, now)
		if claimErr != nil {
			return claimErr
		}
		if replayed != nil {
			result = CreateReservationResult{ID: *replayed, IsReplayed: true}
			return nil
		}

		tbl, warnings, availErr := ensureTableAvailable(ctx, tx, restaurantID, req.TableID, interval, partySize, uuid.Nil)
		if availErr != nil {
			return availErr
		}

		if req.CustomerID != nil {
			if _, findErr := tx.Customers().FindByID(ctx, restaurantID, *req.CustomerID); findErr != nil {
				if infra.IsKind(findErr, infra.KindNotFound) {
					return ErrCustomerNotFound
				}
				return errs.Mark(findErr, ErrDatabaseOperationFailed)
			}
		}

		res, newErr := reservation.NewReservation(
			restaurantID, tbl.ID(), req.CustomerID,
			guestName, req.GuestPhone, partySize, interval, now,
		)
		if newErr != nil {
			if errors.Is(newErr, reservation.ErrPastStart) {
				return errs.Mark(newErr, ErrPastTime)
			}
			return errs.Mark(newErr, ErrInvalidTimeSlot)
		}

		if createErr := tx.Reservations().Create(ctx, res); createErr != nil {
			if infra.IsKind(createErr, infra.KindConflict) {
				return errs.Mark(createErr, ErrReservationConflict)
			}
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}

		if jobErr := r.enqueueNotification(ctx, tx, restaurantID, "reservation_created", res.ID(), now); jobErr != nil {
			return errs.Mark(jobErr, ErrDatabaseOperationFailed)
		}

		if markErr := tx.Idempotency().MarkCompleted(ctx, idempotencyKey, userID, res.ID()); markErr != nil {
			return errs.Mark(markErr, ErrDatabaseOperationFailed)
		}

		result = CreateReservationResult{ID: res.ID(), Warnings: warnings}
		after(func(ctx context.Context) {
			r.invalidator.InvalidateTimeline(ctx, restaurantID, interval.Start())
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reservationCommandsImpl) Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateReservationRequest) error {
	partySize, err := reservation.NewPartySize(req.PartySize)
	if err != nil {
		return errs.Mark(err, ErrDomainValidation)
	}
	guestName, err := reservation.NewGuestName(req.GuestName)
	if err != nil {
		return errs.Mark(err, ErrDomainValidation)
	}
	now := r.clock.Now()

	return r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error {
		res, findErr := r.findReservation(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}

		res.UpdateDetails(guestName, req.GuestPhone, partySize, reservation.NewNote(req.GetNote()), now)

		if updateErr := tx.Reservations().Update(ctx, res); updateErr != nil {
			return errs.Mark(updateErr, ErrDatabaseOperationFailed)
		}
		after(func(ctx context.Context) {
			r.invalidator.InvalidateTimeline(ctx, restaurantID, res.Interval().Start())
		})
		return nil
	})
}

// Move relocates a reservation to a new table and/or window, running the
// same availability check as Create with the moved reservation excluded so
// it never conflicts with its own current slot.
func (r *reservationCommandsImpl) Move(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.MoveReservationRequest) (*MoveReservationResult, error) {
	interval, err := r.parseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()

	var result MoveReservationResult
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error {
		res, findErr := r.findReservation(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}
		previousStart := res.Interval().Start()

		_, warnings, availErr := ensureTableAvailable(ctx, tx, restaurantID, req.TableID, interval, res.PartySize(), res.ID())
		if availErr != nil {
			return availErr
		}

		if moveErr := res.Reschedule(req.TableID, interval, now); moveErr != nil {
			if errors.Is(moveErr, reservation.ErrPastStart) {
				return errs.Mark(moveErr, ErrPastTime)
			}
			return errs.Mark(moveErr, ErrIllegalTransition)
		}

		if updateErr := tx.Reservations().Update(ctx, res); updateErr != nil {
			if infra.IsKind(updateErr, infra.KindConflict) {
				return errs.Mark(updateErr, ErrReservationConflict)
			}
			return errs.Mark(updateErr, ErrDatabaseOperationFailed)
		}

		result = MoveReservationResult{Warnings: warnings}
		after(func(ctx context.Context) {
			r.invalidator.InvalidateTimeline(ctx, restaurantID, previousStart)
			r.invalidator.InvalidateTimeline(ctx, restaurantID, interval.Start())
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ChangeStatus applies a lifecycle action and folds the resulting customer
// stat deltas into the linked profile, all in one transaction.
func (r *reservationCommandsImpl) ChangeStatus(ctx context.Context, restaurantID, id uuid.UUID, action string) error {
	act := reservation.Action(action)
	if _, ok := act.TargetStatus(); !ok {
		return ErrInvalidAction
	}
	now := r.clock.Now()

	return r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error {
		res, findErr := r.findReservation(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}

		changed, effects, applyErr := res.Apply(act, now)
		if applyErr != nil {
			return errs.Mark(applyErr, ErrIllegalTransition)
		}
		if !changed {
			return nil
		}

		if updateErr := tx.Reservations().Update(ctx, res); updateErr != nil {
			return errs.Mark(updateErr, ErrDatabaseOperationFailed)
		}

		if !effects.IsZero() && res.CustomerID() != nil {
			if statErr := tx.Customers().ApplyEffects(ctx, restaurantID, *res.CustomerID(), effects); statErr != nil {
				return errs.Mark(statErr, ErrDatabaseOperationFailed)
			}
		}

		if jobErr := r.enqueueNotification(ctx, tx, restaurantID, "reservation_"+string(res.Status()), res.ID(), now); jobErr != nil {
			return errs.Mark(jobErr, ErrDatabaseOperationFailed)
		}

		after(func(ctx context.Context) {
			r.invalidator.InvalidateTimeline(ctx, restaurantID, res.Interval().Start())
		})
		return nil
	})
}

func (r *reservationCommandsImpl) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error {
		res, findErr := r.findReservation(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}

		if deleteErr := tx.Reservations().Delete(ctx, restaurantID, id); deleteErr != nil {
			return errs.Mark(deleteErr, ErrDatabaseOperationFailed)
		}
		after(func(ctx context.Context) {
			r.invalidator.InvalidateTimeline(ctx, restaurantID, res.Interval().Start())
		})
		return nil
	})
}

// ensureTableAvailable locks the table row, loads every reservation touching
// the window, and runs the overlap check. The row lock plus the database
// exclusion constraint make check-then-insert safe under concurrency.
func ensureTableAvailable(
	ctx context.Context,
	tx shared.Tx,
	restaurantID, tableID uuid.UUID,
	interval reservation.Interval,
	partySize reservation.PartySize,
	excludeID uuid.UUID,
) (*table.Table, []string, error) {
	tbl, err := tx.Tables().LockByID(ctx, restaurantID, tableID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, ErrTableNotFound
		}
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	existing, err := tx.Reservations().ListForTableBetween(ctx, tableID, interval.Start(), interval.End())
	if err != nil {
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	availability := reservation.CheckAvailability(interval, existing, excludeID)
	if !availability.Available {
		conflict := availability.Conflict
		return nil, nil, &ConflictError{
			ConflictingID: conflict.ID(),
			TableID:       conflict.TableID(),
			StartTime:     conflict.Interval().Start(),
			EndTime:       conflict.Interval().End(),
			Status:        string(conflict.Status()),
		}
	}

	var warnings []string
	if !partySize.Fits(tbl.Capacity()) {
		warnings = append(warnings, fmt.Sprintf(
			"party of %d exceeds table capacity %d", partySize.Value(), tbl.Capacity()))
	}
	return tbl, warnings, nil
}

func (r *reservationCommandsImpl) findReservation(ctx context.Context, tx shared.Tx, restaurantID, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := tx.Reservations().FindByID(ctx, restaurantID, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return res, nil
}

// claimIdempotencyKey inserts the key; on a duplicate it resolves the prior
// request: completed replays the stored result, in-flight or divergent
// payloads are rejected.
func (r *reservationCommandsImpl) claimIdempotencyKey(
	ctx context.Context,
	tx shared.Tx,
	key, userID uuid.UUID,
	requestHash string,
	now time.Time,
) (*uuid.UUID, error) {
	err := tx.Idempotency().TryInsert(ctx, key, userID, "POST /reservations", requestHash, now.Add(24*time.Hour))
	if err == nil {
		return nil, nil
	}
	if !infra.IsKind(err, infra.KindDuplicateKey) {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	existing, getErr := tx.Idempotency().Get(ctx, key, userID)
	if getErr != nil {
		return nil, errs.Mark(getErr, ErrIdempotencyCheckFailed)
	}
	if existing.RequestHash != requestHash {
		return nil, ErrDuplicateRequest
	}

	switch existing.Status {
	case shared.IdempotencyCompleted:
		if existing.ResultID == nil {
			return nil, errs.Mark(errs.New("completed request missing result id"), ErrIdempotencyCheckFailed)
		}
		return existing.ResultID, nil
	case shared.IdempotencyProcessing:
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.Mark(errs.New("unknown idempotency status"), ErrIdempotencyCheckFailed)
	}
}

func (r *reservationCommandsImpl) enqueueNotification(ctx context.Context, tx shared.Tx, restaurantID uuid.UUID, topic string, reservationID uuid.UUID, now time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": reservationID,
		"type":           topic,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, restaurantID, "email", topic, payload, now)
}

func (r *reservationCommandsImpl) parseInterval(start, end time.Time) (reservation.Interval, error) {
	if !r.grid.IsAligned(start) || !r.grid.IsAligned(end) {
		return reservation.Interval{}, errs.Mark(schedule.ErrOffGrid, ErrInvalidTimeSlot)
	}
	interval, err := reservation.NewInterval(start, end)
	if err != nil {
		return reservation.Interval{}, errs.Mark(err, ErrInvalidTimeSlot)
	}
	return interval, nil
}

func calculateRequestHash(req any) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
