//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/domain/customer"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/table"
	reqdto "tablebook/internal/handler/dto/request"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
	"tablebook/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReservationCommandsTestSuite struct {
	suite.Suite
	uow          *fake.UnitOfWork
	invalidator  *fake.RecordingInvalidator
	clock        *clock.MockClock
	cmds         commands.ReservationCommands
	restaurantID uuid.UUID
	userID       uuid.UUID
	tableID      uuid.UUID
}

func (s *ReservationCommandsTestSuite) SetupTest() {
	s.uow = fake.NewUnitOfWork()
	s.invalidator = &fake.RecordingInvalidator{}
	s.clock = clock.NewMockClock(time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC))
	s.restaurantID = uuid.New()
	s.userID = uuid.New()

	tbl, err := table.NewTable(s.restaurantID, "T1", 4, table.ShapeSquare)
	s.Require().NoError(err)
	s.uow.Tx.TableRepo.Put(tbl)
	s.tableID = tbl.ID()

	cfg := config.ScheduleConfig{DayStartHour: 8, SlotMinutes: 15, NoShowGraceMinutes: 120, AvgTurnoverMinutes: 90}
	s.cmds, err = commands.NewReservationCommands(s.uow, s.invalidator, cfg, s.clock)
	s.Require().NoError(err)
}

func TestReservationCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsTestSuite))
}

func (s *ReservationCommandsTestSuite) createRequest(start time.Time) reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		TableID:   s.tableID,
		GuestName: "Tanaka",
		PartySize: 2,
		StartTime: start,
		EndTime:   start.Add(90 * time.Minute),
	}
}

func (s *ReservationCommandsTestSuite) TestCreate() {
	start := time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)

	s.Run("success: persists reservation, completes idempotency key and evicts the timeline", func() {
		key := uuid.New()
		result, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, key, s.createRequest(start))
		s.Require().NoError(err)
		s.False(result.IsReplayed)
		s.Empty(result.Warnings)

		stored, findErr := s.uow.Tx.ReservationRepo.FindByID(context.Background(), s.restaurantID, result.ID)
		s.Require().NoError(findErr)
		s.Equal(reservation.StatusBooked, stored.Status())

		rec, getErr := s.uow.Tx.IdempotencyRepo.Get(context.Background(), key, s.userID)
		s.Require().NoError(getErr)
		s.Require().NotNil(rec.ResultID)
		s.Equal(result.ID, *rec.ResultID)

		s.Require().Len(s.invalidator.Calls, 1)
		s.Equal(s.restaurantID, s.invalidator.Calls[0].RestaurantID)

		s.Require().Len(s.uow.Tx.NotificationRepo.Jobs, 1)
		s.Equal("reservation_created", s.uow.Tx.NotificationRepo.Jobs[0].Topic)
	})

	s.Run("error: off-grid start time", func() {
		req := s.createRequest(start.Add(7 * time.Minute))
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.ErrorIs(err, commands.ErrInvalidTimeSlot)
	})

	s.Run("error: start time in the past", func() {
		req := s.createRequest(time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC))
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.ErrorIs(err, commands.ErrPastTime)
		s.NotErrorIs(err, commands.ErrInvalidTimeSlot)
	})

	s.Run("error: unknown table", func() {
		req := s.createRequest(start)
		req.TableID = uuid.New()
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.ErrorIs(err, commands.ErrTableNotFound)
	})

	s.Run("error: unknown linked customer", func() {
		req := s.createRequest(start.Add(4 * time.Hour))
		missing := uuid.New()
		req.CustomerID = &missing
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.ErrorIs(err, commands.ErrCustomerNotFound)
	})

	s.Run("warning: party larger than table capacity still books", func() {
		req := s.createRequest(time.Date(2026, 5, 11, 19, 0, 0, 0, time.UTC))
		req.PartySize = 6
		result, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.Require().NoError(err)
		s.Require().Len(result.Warnings, 1)
		s.Contains(result.Warnings[0], "exceeds table capacity")
	})
}

func (s *ReservationCommandsTestSuite) TestCreate_Conflicts() {
	start := time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)
	first, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), s.createRequest(start))
	s.Require().NoError(err)

	s.Run("overlapping window on the same table is rejected with conflict detail", func() {
		req := s.createRequest(start.Add(30 * time.Minute))
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.Require().Error(err)
		s.ErrorIs(err, commands.ErrReservationConflict)

		var conflict *commands.ConflictError
		s.Require().ErrorAs(err, &conflict)
		s.Equal(first.ID, conflict.ConflictingID)
		s.Equal(s.tableID, conflict.TableID)
	})

	s.Run("back-to-back booking on the shared boundary is allowed", func() {
		req := s.createRequest(start.Add(90 * time.Minute))
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.NoError(err)
	})

	s.Run("cancelled reservation does not block the slot", func() {
		s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, first.ID, string(reservation.ActionCancel)))

		req := s.createRequest(start)
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
		s.NoError(err)
	})
}

func (s *ReservationCommandsTestSuite) TestCreate_Idempotency() {
	start := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)
	key := uuid.New()
	req := s.createRequest(start)

	first, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, key, req)
	s.Require().NoError(err)

	s.Run("same key and payload replays the original result", func() {
		second, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, key, req)
		s.Require().NoError(err)
		s.True(second.IsReplayed)
		s.Equal(first.ID, second.ID)
		s.Len(s.uow.Tx.ReservationRepo.All(), 1)
	})

	s.Run("same key with a different payload is rejected", func() {
		diverged := req
		diverged.PartySize = 4
		_, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, key, diverged)
		s.ErrorIs(err, commands.ErrDuplicateRequest)
	})
}

func (s *ReservationCommandsTestSuite) TestChangeStatus_Effects() {
	cust, err := customer.NewCustomer(s.restaurantID, "Suzuki", "090-1234-5678")
	s.Require().NoError(err)
	s.uow.Tx.CustomerRepo.Put(cust)

	start := time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)
	req := s.createRequest(start)
	custID := cust.ID()
	req.CustomerID = &custID

	created, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
	s.Require().NoError(err)

	s.Run("seating counts exactly one visit", func() {
		s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, created.ID, string(reservation.ActionSeat)))

		s.Require().Len(s.uow.Tx.CustomerRepo.Applied, 1)
		applied := s.uow.Tx.CustomerRepo.Applied[0]
		s.Equal(custID, applied.CustomerID)
		s.Equal(1, applied.Effects.VisitDelta)
		s.Require().NotNil(applied.Effects.LastVisitAt)
	})

	s.Run("repeating the action is a no-op", func() {
		s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, created.ID, string(reservation.ActionSeat)))
		s.Len(s.uow.Tx.CustomerRepo.Applied, 1)
	})

	s.Run("finishing after seating adds no second visit", func() {
		s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, created.ID, string(reservation.ActionFinish)))
		s.Len(s.uow.Tx.CustomerRepo.Applied, 1)
	})

	s.Run("reopening a finished reservation is illegal", func() {
		err := s.cmds.ChangeStatus(context.Background(), s.restaurantID, created.ID, string(reservation.ActionSeat))
		s.ErrorIs(err, commands.ErrIllegalTransition)
	})

	s.Run("unknown action", func() {
		err := s.cmds.ChangeStatus(context.Background(), s.restaurantID, created.ID, "vaporize")
		s.ErrorIs(err, commands.ErrInvalidAction)
	})
}

func (s *ReservationCommandsTestSuite) TestChangeStatus_CancellationEffect() {
	cust, err := customer.NewCustomer(s.restaurantID, "Sato", "080-0000-1111")
	s.Require().NoError(err)
	s.uow.Tx.CustomerRepo.Put(cust)

	start := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	req := s.createRequest(start)
	custID := cust.ID()
	req.CustomerID = &custID

	created, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), req)
	s.Require().NoError(err)

	s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, created.ID, string(reservation.ActionCancel)))
	s.Require().Len(s.uow.Tx.CustomerRepo.Applied, 1)
	s.Equal(1, s.uow.Tx.CustomerRepo.Applied[0].Effects.CancellationDelta)
	s.Equal(0, s.uow.Tx.CustomerRepo.Applied[0].Effects.VisitDelta)
}

func (s *ReservationCommandsTestSuite) TestMove() {
	start := time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)
	created, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), s.createRequest(start))
	s.Require().NoError(err)

	other, err := table.NewTable(s.restaurantID, "T2", 2, table.ShapeRound)
	s.Require().NoError(err)
	s.uow.Tx.TableRepo.Put(other)

	s.Run("success: same window on another table", func() {
		s.invalidator.Calls = nil
		result, err := s.cmds.Move(context.Background(), s.restaurantID, created.ID, reqdto.MoveReservationRequest{
			TableID:   other.ID(),
			StartTime: start,
			EndTime:   start.Add(90 * time.Minute),
		})
		s.Require().NoError(err)
		s.Empty(result.Warnings)

		moved, findErr := s.uow.Tx.ReservationRepo.FindByID(context.Background(), s.restaurantID, created.ID)
		s.Require().NoError(findErr)
		s.Equal(other.ID(), moved.TableID())

		// both the vacated and the newly occupied day get evicted
		s.Len(s.invalidator.Calls, 2)
	})

	s.Run("success: shifting within its own slot never self-conflicts", func() {
		_, err := s.cmds.Move(context.Background(), s.restaurantID, created.ID, reqdto.MoveReservationRequest{
			TableID:   other.ID(),
			StartTime: start.Add(15 * time.Minute),
			EndTime:   start.Add(105 * time.Minute),
		})
		s.NoError(err)
	})

	s.Run("error: moving onto an occupied table", func() {
		blocker, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), s.createRequest(start))
		s.Require().NoError(err)

		_, err = s.cmds.Move(context.Background(), s.restaurantID, blocker.ID, reqdto.MoveReservationRequest{
			TableID:   other.ID(),
			StartTime: start,
			EndTime:   start.Add(90 * time.Minute),
		})
		s.ErrorIs(err, commands.ErrReservationConflict)
	})

	s.Run("error: moving into the past", func() {
		past := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
		_, err := s.cmds.Move(context.Background(), s.restaurantID, created.ID, reqdto.MoveReservationRequest{
			TableID:   other.ID(),
			StartTime: past,
			EndTime:   past.Add(90 * time.Minute),
		})
		s.ErrorIs(err, commands.ErrPastTime)
		s.NotErrorIs(err, commands.ErrIllegalTransition)
	})

	s.Run("error: unknown reservation", func() {
		_, err := s.cmds.Move(context.Background(), s.restaurantID, uuid.New(), reqdto.MoveReservationRequest{
			TableID:   other.ID(),
			StartTime: start,
			EndTime:   start.Add(time.Hour),
		})
		s.ErrorIs(err, commands.ErrReservationNotFound)
	})
}

func (s *ReservationCommandsTestSuite) TestDelete() {
	start := time.Date(2026, 5, 10, 21, 0, 0, 0, time.UTC)
	created, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), s.createRequest(start))
	s.Require().NoError(err)

	s.Require().NoError(s.cmds.Delete(context.Background(), s.restaurantID, created.ID))
	_, findErr := s.uow.Tx.ReservationRepo.FindByID(context.Background(), s.restaurantID, created.ID)
	s.Error(findErr)

	s.ErrorIs(s.cmds.Delete(context.Background(), s.restaurantID, created.ID), commands.ErrReservationNotFound)
}

func (s *ReservationCommandsTestSuite) TestTenantIsolation() {
	start := time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)
	created, err := s.cmds.Create(context.Background(), s.restaurantID, s.userID, uuid.New(), s.createRequest(start))
	s.Require().NoError(err)

	otherRestaurant := uuid.New()

	s.Run("update under another tenant reports not found", func() {
		err := s.cmds.Update(context.Background(), otherRestaurant, created.ID, reqdto.UpdateReservationRequest{
			GuestName: "Mallory",
			PartySize: 2,
		})
		s.ErrorIs(err, commands.ErrReservationNotFound)
	})

	s.Run("move under another tenant reports not found", func() {
		_, err := s.cmds.Move(context.Background(), otherRestaurant, created.ID, reqdto.MoveReservationRequest{
			TableID:   s.tableID,
			StartTime: start.Add(2 * time.Hour),
			EndTime:   start.Add(3 * time.Hour),
		})
		s.ErrorIs(err, commands.ErrReservationNotFound)
	})

	s.Run("status change under another tenant reports not found", func() {
		err := s.cmds.ChangeStatus(context.Background(), otherRestaurant, created.ID, string(reservation.ActionSeat))
		s.ErrorIs(err, commands.ErrReservationNotFound)
	})

	s.Run("delete under another tenant reports not found", func() {
		err := s.cmds.Delete(context.Background(), otherRestaurant, created.ID)
		s.ErrorIs(err, commands.ErrReservationNotFound)
	})

	s.Run("reservation stays untouched for its own tenant", func() {
		res, findErr := s.uow.Tx.ReservationRepo.FindByID(context.Background(), s.restaurantID, created.ID)
		s.Require().NoError(findErr)
		s.Equal(reservation.StatusBooked, res.Status())
		s.Equal("Tanaka", res.GuestName().String())
	})
}
