//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"tablebook/internal/domain/reservation"
	"tablebook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, reservation.StatusBooked, actual.Status())
		assert.False(t, actual.VisitCounted())
	})

	t.Run("start in the past is rejected", func(t *testing.T) {
		b := builder.NewReservationBuilder()
		b.WithInterval(b.Now().Add(-time.Hour), b.Now().Add(time.Hour))

		_, err := b.BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrPastStart)
	})

	t.Run("party size below one is rejected", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().WithPartySize(0).BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrInvalidPartySize)
	})

	t.Run("empty guest name is rejected", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().WithGuestName("   ").BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrEmptyGuestName)
	})

	t.Run("inverted interval is rejected", func(t *testing.T) {
		b := builder.NewReservationBuilder()
		b.WithInterval(b.Now().Add(2*time.Hour), b.Now().Add(time.Hour))

		_, err := b.BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrInvalidInterval)
	})
}

func TestStatus_TransitionTable(t *testing.T) {
	legal := []struct {
		from reservation.Status
		to   reservation.Status
	}{
		{reservation.StatusBooked, reservation.StatusConfirmed},
		{reservation.StatusBooked, reservation.StatusSeated},
		{reservation.StatusBooked, reservation.StatusCancelled},
		{reservation.StatusBooked, reservation.StatusNoShow},
		{reservation.StatusConfirmed, reservation.StatusSeated},
		{reservation.StatusConfirmed, reservation.StatusCancelled},
		{reservation.StatusConfirmed, reservation.StatusNoShow},
		{reservation.StatusSeated, reservation.StatusFinished},
		{reservation.StatusSeated, reservation.StatusCancelled},
	}
	for _, tc := range legal {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct {
		from reservation.Status
		to   reservation.Status
	}{
		{reservation.StatusConfirmed, reservation.StatusBooked},
		{reservation.StatusSeated, reservation.StatusConfirmed},
		{reservation.StatusFinished, reservation.StatusSeated},
		{reservation.StatusCancelled, reservation.StatusBooked},
		{reservation.StatusNoShow, reservation.StatusSeated},
		{reservation.StatusFinished, reservation.StatusCancelled},
	}
	for _, tc := range illegal {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}

	for _, s := range []reservation.Status{reservation.StatusFinished, reservation.StatusCancelled, reservation.StatusNoShow} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.Blocks())
	}
	for _, s := range []reservation.Status{reservation.StatusBooked, reservation.StatusConfirmed, reservation.StatusSeated} {
		assert.False(t, s.IsTerminal())
		assert.True(t, s.Blocks())
	}
}

func TestReservation_Apply(t *testing.T) {
	customerID := uuid.New()
	now := time.Date(2026, 3, 14, 19, 5, 0, 0, time.UTC)

	newLinked := func(t *testing.T) *reservation.Reservation {
		t.Helper()
		res, err := builder.NewReservationBuilder().WithCustomerID(customerID).BuildDomain()
		require.NoError(t, err)
		return res
	}

	t.Run("seat increments visits exactly once", func(t *testing.T) {
		res := newLinked(t)

		changed, eff, err := res.Apply(reservation.ActionSeat, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, eff.VisitDelta)
		require.NotNil(t, eff.LastVisitAt)
		assert.Equal(t, now, *eff.LastVisitAt)

		// Re-applying the same action is a no-op, not a double count.
		changed, eff, err = res.Apply(reservation.ActionSeat, now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.True(t, eff.IsZero())
		assert.Equal(t, reservation.StatusSeated, res.Status())
	})

	t.Run("finish after seat does not count a second visit", func(t *testing.T) {
		res := newLinked(t)

		_, eff, err := res.Apply(reservation.ActionSeat, now)
		require.NoError(t, err)
		assert.Equal(t, 1, eff.VisitDelta)

		_, eff, err = res.Apply(reservation.ActionFinish, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, eff.VisitDelta, "visit already counted when seated")
	})

	t.Run("no-show increments no-show count", func(t *testing.T) {
		res := newLinked(t)

		changed, eff, err := res.Apply(reservation.ActionNoShow, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, eff.NoShowDelta)
		assert.Equal(t, 0, eff.VisitDelta)
	})

	t.Run("cancel increments cancellation count", func(t *testing.T) {
		res := newLinked(t)

		_, eff, err := res.Apply(reservation.ActionCancel, now)
		require.NoError(t, err)
		assert.Equal(t, 1, eff.CancellationDelta)
	})

	t.Run("transition out of a terminal state is rejected", func(t *testing.T) {
		res := newLinked(t)

		_, _, err := res.Apply(reservation.ActionCancel, now)
		require.NoError(t, err)

		_, _, err = res.Apply(reservation.ActionSeat, now)
		assert.ErrorIs(t, err, reservation.ErrIllegalTransition)
		assert.Equal(t, reservation.StatusCancelled, res.Status())
	})

	t.Run("no customer linked means no stat effects", func(t *testing.T) {
		res, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)

		changed, eff, err := res.Apply(reservation.ActionSeat, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, eff.IsZero())
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		res := newLinked(t)

		_, _, err := res.Apply(reservation.Action("vanish"), now)
		assert.ErrorIs(t, err, reservation.ErrInvalidAction)
	})
}

func TestReservation_Reschedule(t *testing.T) {
	b := builder.NewReservationBuilder()
	res, err := b.BuildDomain()
	require.NoError(t, err)

	newTable := uuid.New()
	newInterval, err := reservation.NewInterval(b.Now().Add(11*time.Hour), b.Now().Add(12*time.Hour))
	require.NoError(t, err)

	t.Run("moves table and interval", func(t *testing.T) {
		require.NoError(t, res.Reschedule(newTable, newInterval, b.Now()))
		assert.Equal(t, newTable, res.TableID())
		assert.Equal(t, newInterval, res.Interval())
	})

	t.Run("move into the past is rejected", func(t *testing.T) {
		past, err := reservation.NewInterval(b.Now().Add(-2*time.Hour), b.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.ErrorIs(t, res.Reschedule(newTable, past, b.Now()), reservation.ErrPastStart)
	})

	t.Run("terminal reservations cannot move", func(t *testing.T) {
		_, _, err := res.Apply(reservation.ActionCancel, b.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, res.Reschedule(newTable, newInterval, b.Now()), reservation.ErrIllegalTransition)
	})
}

func TestReservation_EligibleForNoShowSweep(t *testing.T) {
	grace := 2 * time.Hour
	b := builder.NewReservationBuilder()
	res, err := b.BuildDomain()
	require.NoError(t, err)

	start := res.Interval().Start()

	assert.False(t, res.EligibleForNoShowSweep(start.Add(time.Hour), grace), "inside grace window")
	assert.True(t, res.EligibleForNoShowSweep(start.Add(grace+time.Minute), grace), "past grace window")

	_, _, err = res.Apply(reservation.ActionSeat, b.Now())
	require.NoError(t, err)
	assert.False(t, res.EligibleForNoShowSweep(start.Add(grace+time.Hour), grace), "seated guests are never swept")
}
