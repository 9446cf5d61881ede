package commands

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/waitlist"
	reqdto "tablebook/internal/handler/dto/request"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrWaitlistEntryNotFound = errs.New("waitlist entry not found")
	ErrWaitlistEntryClosed   = errs.New("waitlist entry is closed")
	ErrInvalidWaitlistStatus = errs.New("invalid waitlist status")
)

type EnqueueResult struct {
	ID       uuid.UUID
	Position int
}

type SeatFromWaitlistResult struct {
	ReservationID uuid.UUID
	Warnings      []string
}

type WaitlistCommands interface {
	Enqueue(ctx context.Context, restaurantID uuid.UUID, req reqdto.EnqueueWaitlistRequest) (*EnqueueResult, error)
	Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateWaitlistRequest) error
	ChangeStatus(ctx context.Context, restaurantID, id uuid.UUID, status string) error
	// Seat turns a waiting party into a reservation already in seated state
	// on the chosen table, then closes the entry and renumbers the queue.
	Seat(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.SeatWaitlistRequest) (*SeatFromWaitlistResult, error)
	Remove(ctx context.Context, restaurantID, id uuid.UUID) error
}

type waitlistCommandsImpl struct {
	uow         shared.UnitOfWork
	invalidator shared.TimelineInvalidator
	turnover    time.Duration
	clock       clock.Clock
}

func NewWaitlistCommands(
	uow shared.UnitOfWork,
	invalidator shared.TimelineInvalidator,
	cfg config.ScheduleConfig,
	clk clock.Clock,
) WaitlistCommands {
	return &waitlistCommandsImpl{
		uow:         uow,
		invalidator: invalidator,
		turnover:    time.Duration(cfg.AvgTurnoverMinutes) * time.Minute,
		clock:       clk,
	}
}

func (w *waitlistCommandsImpl) Enqueue(ctx context.Context, restaurantID uuid.UUID, req reqdto.EnqueueWaitlistRequest) (*EnqueueResult, error) {
	entry, err := waitlist.NewEntry(restaurantID, req.GuestName, req.Phone, req.PartySize, waitlist.Priority(req.Priority), req.Notes)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}
	now := w.clock.Now()

	var result EnqueueResult
	err = w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		active, listErr := tx.Waitlist().ListActiveForUpdate(ctx, restaurantID)
		if listErr != nil {
			return errs.Mark(listErr, ErrDatabaseOperationFailed)
		}

		entry.AssignPosition(waitlist.NextPosition(active), now)
		if createErr := tx.Waitlist().Create(ctx, entry); createErr != nil {
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}

		result = EnqueueResult{ID: entry.ID(), Position: entry.Position()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *waitlistCommandsImpl) Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateWaitlistRequest) error {
	now := w.clock.Now()
	return w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		entry, findErr := w.findEntry(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}
		if updErr := entry.UpdateDetails(req.GuestName, req.Phone, req.PartySize, waitlist.Priority(req.Priority), req.Notes, now); updErr != nil {
			return errs.Mark(updErr, ErrDomainValidation)
		}
		if saveErr := tx.Waitlist().Update(ctx, entry); saveErr != nil {
			return errs.Mark(saveErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

// ChangeStatus moves an entry through the host-stand flow. Entering a closed
// status renumbers the remaining queue; a notified guest gets a notification
// job in the same transaction.
func (w *waitlistCommandsImpl) ChangeStatus(ctx context.Context, restaurantID, id uuid.UUID, status string) error {
	next := waitlist.Status(status)
	if !next.IsValid() {
		return ErrInvalidWaitlistStatus
	}
	now := w.clock.Now()

	return w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		entry, findErr := w.findEntry(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}

		wasActive := entry.IsActive()
		if setErr := entry.SetStatus(next, now); setErr != nil {
			return errs.Mark(setErr, ErrWaitlistEntryClosed)
		}
		if saveErr := tx.Waitlist().Update(ctx, entry); saveErr != nil {
			return errs.Mark(saveErr, ErrDatabaseOperationFailed)
		}

		if next == waitlist.StatusNotified {
			if jobErr := w.enqueueGuestNotification(ctx, tx, entry, now); jobErr != nil {
				return errs.Mark(jobErr, ErrDatabaseOperationFailed)
			}
		}

		if wasActive && !entry.IsActive() {
			if renErr := w.renumberQueue(ctx, tx, restaurantID, now); renErr != nil {
				return renErr
			}
		}
		return nil
	})
}

func (w *waitlistCommandsImpl) Seat(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.SeatWaitlistRequest) (*SeatFromWaitlistResult, error) {
	now := w.clock.Now()

	start := now
	if req.StartTime != nil {
		start = *req.StartTime
	}
	duration := w.turnover
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}
	interval, err := reservation.NewInterval(start, start.Add(duration))
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidTimeSlot)
	}

	var result SeatFromWaitlistResult
	err = w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error {
		entry, findErr := w.findEntry(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}
		if !entry.IsActive() {
			return ErrWaitlistEntryClosed
		}

		guestName, nameErr := reservation.NewGuestName(entry.GuestName())
		if nameErr != nil {
			return errs.Mark(nameErr, ErrDomainValidation)
		}
		partySize, sizeErr := reservation.NewPartySize(entry.PartySize())
		if sizeErr != nil {
			return errs.Mark(sizeErr, ErrDomainValidation)
		}

		tbl, warnings, availErr := ensureTableAvailable(ctx, tx, restaurantID, req.TableID, interval, partySize, uuid.Nil)
		if availErr != nil {
			return availErr
		}

		res, newErr := reservation.NewReservation(
			restaurantID, tbl.ID(), req.CustomerID,
			guestName, entry.Phone(), partySize, interval, now,
		)
		if newErr != nil {
			if errors.Is(newErr, reservation.ErrPastStart) {
				return errs.Mark(newErr, ErrPastTime)
			}
			return errs.Mark(newErr, ErrInvalidTimeSlot)
		}

		// walk-ins are seated immediately, booked -> seated
		_, effects, seatErr := res.Apply(reservation.ActionSeat, now)
		if seatErr != nil {
			return errs.Mark(seatErr, ErrIllegalTransition)
		}

		if createErr := tx.Reservations().Create(ctx, res); createErr != nil {
			if infra.IsKind(createErr, infra.KindConflict) {
				return errs.Mark(createErr, ErrReservationConflict)
			}
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}

		if !effects.IsZero() && res.CustomerID() != nil {
			if statErr := tx.Customers().ApplyEffects(ctx, restaurantID, *res.CustomerID(), effects); statErr != nil {
				return errs.Mark(statErr, ErrDatabaseOperationFailed)
			}
		}

		if setErr := entry.SetStatus(waitlist.StatusSeated, now); setErr != nil {
			return errs.Mark(setErr, ErrWaitlistEntryClosed)
		}
		if saveErr := tx.Waitlist().Update(ctx, entry); saveErr != nil {
			return errs.Mark(saveErr, ErrDatabaseOperationFailed)
		}
		if renErr := w.renumberQueue(ctx, tx, restaurantID, now); renErr != nil {
			return renErr
		}

		result = SeatFromWaitlistResult{ReservationID: res.ID(), Warnings: warnings}
		after(func(ctx context.Context) {
			w.invalidator.InvalidateTimeline(ctx, restaurantID, interval.Start())
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *waitlistCommandsImpl) Remove(ctx context.Context, restaurantID, id uuid.UUID) error {
	now := w.clock.Now()
	return w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		entry, findErr := w.findEntry(ctx, tx, restaurantID, id)
		if findErr != nil {
			return findErr
		}

		if entry.IsActive() {
			if setErr := entry.SetStatus(waitlist.StatusLeft, now); setErr != nil {
				return errs.Mark(setErr, ErrWaitlistEntryClosed)
			}
			if saveErr := tx.Waitlist().Update(ctx, entry); saveErr != nil {
				return errs.Mark(saveErr, ErrDatabaseOperationFailed)
			}
			return w.renumberQueue(ctx, tx, restaurantID, now)
		}
		return nil
	})
}

func (w *waitlistCommandsImpl) renumberQueue(ctx context.Context, tx shared.Tx, restaurantID uuid.UUID, now time.Time) error {
	active, listErr := tx.Waitlist().ListActiveForUpdate(ctx, restaurantID)
	if listErr != nil {
		return errs.Mark(listErr, ErrDatabaseOperationFailed)
	}
	for _, changed := range waitlist.Renumber(active, now) {
		if saveErr := tx.Waitlist().Update(ctx, changed); saveErr != nil {
			return errs.Mark(saveErr, ErrDatabaseOperationFailed)
		}
	}
	return nil
}

func (w *waitlistCommandsImpl) enqueueGuestNotification(ctx context.Context, tx shared.Tx, entry *waitlist.Entry, now time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"waitlist_entry_id": entry.ID(),
		"guest_name":        entry.GuestName(),
		"phone":             entry.Phone(),
		"type":              "table_ready",
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, entry.RestaurantID(), "sms", "table_ready", payload, now)
}

func (w *waitlistCommandsImpl) findEntry(ctx context.Context, tx shared.Tx, restaurantID, id uuid.UUID) (*waitlist.Entry, error) {
	entry, err := tx.Waitlist().FindByID(ctx, restaurantID, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrWaitlistEntryNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return entry, nil
}
