package commands

import (
	"context"
	"log/slog"
	"time"

	"tablebook/internal/domain/reservation"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"
)

const sweepBatchSize = 100

type SweepResult struct {
	Marked int
}

// SweepCommands auto-marks overdue reservations as no-show. Safe to run from
// multiple processes at once: candidates are taken with SKIP LOCKED and the
// status transition is a no-op once another sweeper got there first.
type SweepCommands interface {
	RunNoShowSweep(ctx context.Context) (*SweepResult, error)
}

type sweepCommandsImpl struct {
	uow         shared.UnitOfWork
	invalidator shared.TimelineInvalidator
	grace       time.Duration
	clock       clock.Clock
	logger      *slog.Logger
}

func NewSweepCommands(
	uow shared.UnitOfWork,
	invalidator shared.TimelineInvalidator,
	cfg config.ScheduleConfig,
	clk clock.Clock,
	logger *slog.Logger,
) SweepCommands {
	return &sweepCommandsImpl{
		uow:         uow,
		invalidator: invalidator,
		grace:       time.Duration(cfg.NoShowGraceMinutes) * time.Minute,
		clock:       clk,
		logger:      logger,
	}
}

func (s *sweepCommandsImpl) RunNoShowSweep(ctx context.Context) (*SweepResult, error) {
	now := s.clock.Now()
	cutoff := now.Add(-s.grace)
	total := 0

	for {
		marked, err := s.sweepBatch(ctx, cutoff, now)
		if err != nil {
			return &SweepResult{Marked: total}, err
		}
		total += marked
		if marked < sweepBatchSize {
			break
		}
	}

	if total > 0 {
		s.logger.Info("no-show sweep finished", "marked", total, "cutoff", cutoff)
	}
	return &SweepResult{Marked: total}, nil
}

func (s *sweepCommandsImpl) sweepBatch(ctx context.Context, cutoff, now time.Time) (int, error) {
	marked := 0
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, after func(shared.AfterCommit)) error {
		candidates, listErr := tx.Reservations().ListSweepCandidates(ctx, cutoff, sweepBatchSize)
		if listErr != nil {
			return errs.Mark(listErr, ErrDatabaseOperationFailed)
		}

		for _, res := range candidates {
			if !res.EligibleForNoShowSweep(now, s.grace) {
				continue
			}

			changed, effects, applyErr := res.TransitionTo(reservation.StatusNoShow, now)
			if applyErr != nil || !changed {
				// another actor already closed it out
				continue
			}

			if updateErr := tx.Reservations().Update(ctx, res); updateErr != nil {
				s.logger.Warn("no-show sweep: skipping reservation",
					"reservation_id", res.ID(), "error", updateErr.Error())
				continue
			}

			if !effects.IsZero() && res.CustomerID() != nil {
				if statErr := tx.Customers().ApplyEffects(ctx, res.RestaurantID(), *res.CustomerID(), effects); statErr != nil {
					s.logger.Warn("no-show sweep: customer stats not applied",
						"reservation_id", res.ID(), "customer_id", *res.CustomerID(), "error", statErr.Error())
				}
			}

			restaurantID := res.RestaurantID()
			startTime := res.Interval().Start()
			after(func(ctx context.Context) {
				s.invalidator.InvalidateTimeline(ctx, restaurantID, startTime)
			})
			marked++
		}
		return nil
	})
	return marked, err
}
