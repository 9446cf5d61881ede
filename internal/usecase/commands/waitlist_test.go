//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/domain/customer"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/table"
	"tablebook/internal/domain/waitlist"
	reqdto "tablebook/internal/handler/dto/request"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
	"tablebook/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type WaitlistCommandsTestSuite struct {
	suite.Suite
	uow          *fake.UnitOfWork
	invalidator  *fake.RecordingInvalidator
	clock        *clock.MockClock
	cmds         commands.WaitlistCommands
	restaurantID uuid.UUID
	tableID      uuid.UUID
}

func (s *WaitlistCommandsTestSuite) SetupTest() {
	s.uow = fake.NewUnitOfWork()
	s.invalidator = &fake.RecordingInvalidator{}
	s.clock = clock.NewMockClock(time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC))
	s.restaurantID = uuid.New()

	tbl, err := table.NewTable(s.restaurantID, "T1", 4, table.ShapeSquare)
	s.Require().NoError(err)
	s.uow.Tx.TableRepo.Put(tbl)
	s.tableID = tbl.ID()

	cfg := config.ScheduleConfig{DayStartHour: 8, SlotMinutes: 15, NoShowGraceMinutes: 120, AvgTurnoverMinutes: 90}
	s.cmds = commands.NewWaitlistCommands(s.uow, s.invalidator, cfg, s.clock)
}

func TestWaitlistCommandsSuite(t *testing.T) {
	suite.Run(t, new(WaitlistCommandsTestSuite))
}

func (s *WaitlistCommandsTestSuite) enqueue(name string) *commands.EnqueueResult {
	result, err := s.cmds.Enqueue(context.Background(), s.restaurantID, reqdto.EnqueueWaitlistRequest{
		GuestName: name,
		PartySize: 2,
	})
	s.Require().NoError(err)
	return result
}

func (s *WaitlistCommandsTestSuite) entry(id uuid.UUID) *waitlist.Entry {
	e, err := s.uow.Tx.WaitlistRepo.FindByID(context.Background(), s.restaurantID, id)
	s.Require().NoError(err)
	return e
}

func (s *WaitlistCommandsTestSuite) TestEnqueue() {
	s.Run("positions are assigned first come first served", func() {
		s.Equal(1, s.enqueue("Aoki").Position)
		s.Equal(2, s.enqueue("Baba").Position)
		s.Equal(3, s.enqueue("Chiba").Position)
	})

	s.Run("error: empty guest name", func() {
		_, err := s.cmds.Enqueue(context.Background(), s.restaurantID, reqdto.EnqueueWaitlistRequest{
			GuestName: "  ",
			PartySize: 2,
		})
		s.ErrorIs(err, commands.ErrDomainValidation)
	})

	s.Run("queues of different restaurants are independent", func() {
		otherRestaurant := uuid.New()
		result, err := s.cmds.Enqueue(context.Background(), otherRestaurant, reqdto.EnqueueWaitlistRequest{
			GuestName: "Doi",
			PartySize: 4,
		})
		s.Require().NoError(err)
		s.Equal(1, result.Position)
	})
}

func (s *WaitlistCommandsTestSuite) TestRemove_RenumbersQueue() {
	first := s.enqueue("Aoki")
	second := s.enqueue("Baba")
	third := s.enqueue("Chiba")

	s.Require().NoError(s.cmds.Remove(context.Background(), s.restaurantID, second.ID))

	s.Equal(waitlist.StatusLeft, s.entry(second.ID).Status())
	s.Equal(1, s.entry(first.ID).Position())
	s.Equal(2, s.entry(third.ID).Position())

	s.Run("removing an already closed entry is a no-op", func() {
		s.Require().NoError(s.cmds.Remove(context.Background(), s.restaurantID, second.ID))
		s.Equal(2, s.entry(third.ID).Position())
	})
}

func (s *WaitlistCommandsTestSuite) TestChangeStatus() {
	first := s.enqueue("Aoki")
	second := s.enqueue("Baba")

	s.Run("arrived keeps the queue intact", func() {
		s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, first.ID, string(waitlist.StatusArrived)))
		s.Equal(waitlist.StatusArrived, s.entry(first.ID).Status())
		s.Equal(2, s.entry(second.ID).Position())
	})

	s.Run("notified enqueues a guest notification", func() {
		s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, first.ID, string(waitlist.StatusNotified)))
		s.Require().Len(s.uow.Tx.NotificationRepo.Jobs, 1)
		s.Equal("table_ready", s.uow.Tx.NotificationRepo.Jobs[0].Topic)
		s.Equal("sms", s.uow.Tx.NotificationRepo.Jobs[0].Kind)
	})

	s.Run("closing an entry renumbers those behind it", func() {
		s.Require().NoError(s.cmds.ChangeStatus(context.Background(), s.restaurantID, first.ID, string(waitlist.StatusLeft)))
		s.Equal(1, s.entry(second.ID).Position())
	})

	s.Run("error: closed entries reject further changes", func() {
		err := s.cmds.ChangeStatus(context.Background(), s.restaurantID, first.ID, string(waitlist.StatusArrived))
		s.ErrorIs(err, commands.ErrWaitlistEntryClosed)
	})

	s.Run("error: unknown status", func() {
		err := s.cmds.ChangeStatus(context.Background(), s.restaurantID, second.ID, "teleported")
		s.ErrorIs(err, commands.ErrInvalidWaitlistStatus)
	})
}

func (s *WaitlistCommandsTestSuite) TestSeat() {
	first := s.enqueue("Aoki")
	second := s.enqueue("Baba")

	s.Run("success: creates a seated reservation and closes the entry", func() {
		result, err := s.cmds.Seat(context.Background(), s.restaurantID, first.ID, reqdto.SeatWaitlistRequest{
			TableID: s.tableID,
		})
		s.Require().NoError(err)

		res, findErr := s.uow.Tx.ReservationRepo.FindByID(context.Background(), s.restaurantID, result.ReservationID)
		s.Require().NoError(findErr)
		s.Equal(reservation.StatusSeated, res.Status())
		s.Equal("Aoki", res.GuestName().String())
		// default duration is the configured average turnover
		s.Equal(90*time.Minute, res.Interval().Duration())

		s.Equal(waitlist.StatusSeated, s.entry(first.ID).Status())
		s.Equal(1, s.entry(second.ID).Position())
		s.Len(s.invalidator.Calls, 1)
	})

	s.Run("error: seating the same entry twice", func() {
		_, err := s.cmds.Seat(context.Background(), s.restaurantID, first.ID, reqdto.SeatWaitlistRequest{
			TableID: s.tableID,
		})
		s.ErrorIs(err, commands.ErrWaitlistEntryClosed)
	})

	s.Run("error: table still occupied", func() {
		_, err := s.cmds.Seat(context.Background(), s.restaurantID, second.ID, reqdto.SeatWaitlistRequest{
			TableID: s.tableID,
		})
		s.ErrorIs(err, commands.ErrReservationConflict)
	})
}

func (s *WaitlistCommandsTestSuite) TestSeat_CountsVisitForLinkedCustomer() {
	cust, err := customer.NewCustomer(s.restaurantID, "Eto", "070-2222-3333")
	s.Require().NoError(err)
	s.uow.Tx.CustomerRepo.Put(cust)

	entry := s.enqueue("Eto")
	custID := cust.ID()

	_, err = s.cmds.Seat(context.Background(), s.restaurantID, entry.ID, reqdto.SeatWaitlistRequest{
		TableID:    s.tableID,
		CustomerID: &custID,
	})
	s.Require().NoError(err)

	s.Require().Len(s.uow.Tx.CustomerRepo.Applied, 1)
	s.Equal(custID, s.uow.Tx.CustomerRepo.Applied[0].CustomerID)
	s.Equal(1, s.uow.Tx.CustomerRepo.Applied[0].Effects.VisitDelta)
}

func (s *WaitlistCommandsTestSuite) TestUpdate() {
	entry := s.enqueue("Aoki")

	s.Require().NoError(s.cmds.Update(context.Background(), s.restaurantID, entry.ID, reqdto.UpdateWaitlistRequest{
		GuestName: "Aoki Taro",
		PartySize: 5,
		Priority:  string(waitlist.PriorityVIP),
	}))

	updated := s.entry(entry.ID)
	s.Equal("Aoki Taro", updated.GuestName())
	s.Equal(5, updated.PartySize())
	s.Equal(waitlist.PriorityVIP, updated.Priority())

	s.ErrorIs(
		s.cmds.Update(context.Background(), s.restaurantID, uuid.New(), reqdto.UpdateWaitlistRequest{
			GuestName: "Nobody",
			PartySize: 2,
			Priority:  string(waitlist.PriorityNormal),
		}),
		commands.ErrWaitlistEntryNotFound,
	)
}
