//go:build unit

package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"tablebook/internal/domain/customer"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
	"tablebook/tests/common/builder"
	"tablebook/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SweepCommandsTestSuite struct {
	suite.Suite
	uow          *fake.UnitOfWork
	invalidator  *fake.RecordingInvalidator
	clock        *clock.MockClock
	cmds         commands.SweepCommands
	restaurantID uuid.UUID
}

func (s *SweepCommandsTestSuite) SetupTest() {
	s.uow = fake.NewUnitOfWork()
	s.invalidator = &fake.RecordingInvalidator{}
	s.clock = clock.NewMockClock(time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC))
	s.restaurantID = uuid.New()

	cfg := config.ScheduleConfig{DayStartHour: 8, SlotMinutes: 15, NoShowGraceMinutes: 120, AvgTurnoverMinutes: 90}
	s.cmds = commands.NewSweepCommands(s.uow, s.invalidator, cfg, s.clock, slog.Default())
}

func TestSweepCommandsSuite(t *testing.T) {
	suite.Run(t, new(SweepCommandsTestSuite))
}

func (s *SweepCommandsTestSuite) addReservation(start time.Time, status reservation.Status, customerID *uuid.UUID) *reservation.Reservation {
	b := builder.NewReservationBuilder().
		WithRestaurantID(s.restaurantID).
		WithInterval(start, start.Add(90*time.Minute)).
		WithNow(start.Add(-24 * time.Hour))
	if customerID != nil {
		b = b.WithCustomerID(*customerID)
	}
	res, err := b.BuildDomain()
	s.Require().NoError(err)

	if status != reservation.StatusBooked {
		_, _, transErr := res.TransitionTo(status, start)
		s.Require().NoError(transErr)
	}
	s.Require().NoError(s.uow.Tx.ReservationRepo.Create(context.Background(), res))
	return res
}

func (s *SweepCommandsTestSuite) TestRunNoShowSweep() {
	now := s.clock.Now()

	cust, err := customer.NewCustomer(s.restaurantID, "Fujii", "090-9999-0000")
	s.Require().NoError(err)
	s.uow.Tx.CustomerRepo.Put(cust)
	custID := cust.ID()

	overdue := s.addReservation(now.Add(-3*time.Hour), reservation.StatusBooked, &custID)
	overdueConfirmed := s.addReservation(now.Add(-4*time.Hour), reservation.StatusConfirmed, nil)
	withinGrace := s.addReservation(now.Add(-time.Hour), reservation.StatusBooked, nil)
	seated := s.addReservation(now.Add(-5*time.Hour), reservation.StatusSeated, nil)
	upcoming := s.addReservation(now.Add(2*time.Hour), reservation.StatusBooked, nil)

	result, err := s.cmds.RunNoShowSweep(context.Background())
	s.Require().NoError(err)
	s.Equal(2, result.Marked)

	find := func(id uuid.UUID) *reservation.Reservation {
		res, findErr := s.uow.Tx.ReservationRepo.FindByID(context.Background(), s.restaurantID, id)
		s.Require().NoError(findErr)
		return res
	}

	s.Equal(reservation.StatusNoShow, find(overdue.ID()).Status())
	s.Equal(reservation.StatusNoShow, find(overdueConfirmed.ID()).Status())
	s.Equal(reservation.StatusBooked, find(withinGrace.ID()).Status())
	s.Equal(reservation.StatusSeated, find(seated.ID()).Status())
	s.Equal(reservation.StatusBooked, find(upcoming.ID()).Status())

	s.Run("no-show effect lands on the linked customer only", func() {
		s.Require().Len(s.uow.Tx.CustomerRepo.Applied, 1)
		s.Equal(custID, s.uow.Tx.CustomerRepo.Applied[0].CustomerID)
		s.Equal(1, s.uow.Tx.CustomerRepo.Applied[0].Effects.NoShowDelta)
	})

	s.Run("each marked reservation evicts its timeline day", func() {
		s.Len(s.invalidator.Calls, 2)
	})

	s.Run("running again marks nothing", func() {
		again, err := s.cmds.RunNoShowSweep(context.Background())
		s.Require().NoError(err)
		s.Zero(again.Marked)
		s.Len(s.uow.Tx.CustomerRepo.Applied, 1)
	})
}

func (s *SweepCommandsTestSuite) TestRunNoShowSweepToleratesRowFailures() {
	now := s.clock.Now()

	cust, err := customer.NewCustomer(s.restaurantID, "Fujii", "090-9999-0000")
	s.Require().NoError(err)
	s.uow.Tx.CustomerRepo.Put(cust)
	custID := cust.ID()

	failing := s.addReservation(now.Add(-3*time.Hour), reservation.StatusBooked, &custID)
	healthy := s.addReservation(now.Add(-4*time.Hour), reservation.StatusConfirmed, nil)

	s.uow.Tx.ReservationRepo.FailUpdate = map[uuid.UUID]error{
		failing.ID(): errors.New("connection reset"),
	}

	result, err := s.cmds.RunNoShowSweep(context.Background())
	s.Require().NoError(err)

	s.Run("the remaining candidate is still marked", func() {
		s.Equal(1, result.Marked)
		res, findErr := s.uow.Tx.ReservationRepo.FindByID(context.Background(), s.restaurantID, healthy.ID())
		s.Require().NoError(findErr)
		s.Equal(reservation.StatusNoShow, res.Status())
	})

	s.Run("no stat effect lands for the skipped reservation", func() {
		s.Empty(s.uow.Tx.CustomerRepo.Applied)
	})

	s.Run("only the marked reservation evicts its timeline day", func() {
		s.Len(s.invalidator.Calls, 1)
	})
}
