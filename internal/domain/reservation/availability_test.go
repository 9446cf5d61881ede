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

func mustInterval(t *testing.T, start, end time.Time) reservation.Interval {
	t.Helper()
	iv, err := reservation.NewInterval(start, end)
	require.NoError(t, err)
	return iv
}

func buildAt(t *testing.T, start, end time.Time) *reservation.Reservation {
	t.Helper()
	b := builder.NewReservationBuilder().WithNow(start.Add(-24 * time.Hour))
	res, err := b.WithInterval(start, end).BuildDomain()
	require.NoError(t, err)
	return res
}

func TestInterval_OverlapSymmetry(t *testing.T) {
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		a, b    reservation.Interval
		overlap bool
	}{
		{
			name:    "identical intervals",
			a:       mustInterval(t, base, base.Add(time.Hour)),
			b:       mustInterval(t, base, base.Add(time.Hour)),
			overlap: true,
		},
		{
			name:    "partial overlap",
			a:       mustInterval(t, base, base.Add(90*time.Minute)),
			b:       mustInterval(t, base.Add(time.Hour), base.Add(2*time.Hour)),
			overlap: true,
		},
		{
			name:    "containment",
			a:       mustInterval(t, base, base.Add(3*time.Hour)),
			b:       mustInterval(t, base.Add(time.Hour), base.Add(2*time.Hour)),
			overlap: true,
		},
		{
			name:    "touching endpoints",
			a:       mustInterval(t, base, base.Add(time.Hour)),
			b:       mustInterval(t, base.Add(time.Hour), base.Add(2*time.Hour)),
			overlap: false,
		},
		{
			name:    "disjoint",
			a:       mustInterval(t, base, base.Add(time.Hour)),
			b:       mustInterval(t, base.Add(2*time.Hour), base.Add(3*time.Hour)),
			overlap: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.overlap, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestCheckAvailability(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	// Booked 19:00-20:30.
	existing := buildAt(t, at(19, 0), at(20, 30))

	t.Run("overlapping candidate is rejected with the conflict", func(t *testing.T) {
		got := reservation.CheckAvailability(mustInterval(t, at(20, 0), at(21, 0)), []*reservation.Reservation{existing}, uuid.Nil)
		assert.False(t, got.Available)
		require.NotNil(t, got.Conflict)
		assert.Equal(t, existing.ID(), got.Conflict.ID())
	})

	t.Run("touching candidate is accepted", func(t *testing.T) {
		got := reservation.CheckAvailability(mustInterval(t, at(20, 30), at(21, 30)), []*reservation.Reservation{existing}, uuid.Nil)
		assert.True(t, got.Available)
		assert.Nil(t, got.Conflict)
	})

	t.Run("cancelled and no-show reservations never block", func(t *testing.T) {
		cancelled := buildAt(t, at(19, 0), at(20, 0))
		_, _, err := cancelled.Apply(reservation.ActionCancel, at(10, 0))
		require.NoError(t, err)

		noShow := buildAt(t, at(19, 0), at(20, 0))
		_, _, err = noShow.Apply(reservation.ActionNoShow, at(21, 30))
		require.NoError(t, err)

		got := reservation.CheckAvailability(mustInterval(t, at(19, 0), at(20, 0)), []*reservation.Reservation{cancelled, noShow}, uuid.Nil)
		assert.True(t, got.Available)
	})

	t.Run("seated reservations block", func(t *testing.T) {
		seated := buildAt(t, at(19, 0), at(20, 0))
		_, _, err := seated.Apply(reservation.ActionSeat, at(19, 5))
		require.NoError(t, err)

		got := reservation.CheckAvailability(mustInterval(t, at(19, 30), at(20, 30)), []*reservation.Reservation{seated}, uuid.Nil)
		assert.False(t, got.Available)
	})

	t.Run("a move excludes the reservation's own prior slot", func(t *testing.T) {
		got := reservation.CheckAvailability(mustInterval(t, at(19, 0), at(21, 0)), []*reservation.Reservation{existing}, existing.ID())
		assert.True(t, got.Available, "resizing over its own interval must not self-conflict")
	})

	t.Run("empty table is always available", func(t *testing.T) {
		got := reservation.CheckAvailability(mustInterval(t, at(19, 0), at(20, 0)), nil, uuid.Nil)
		assert.True(t, got.Available)
	})
}

// Property: after any accepted sequence of create/move operations the blocking
// set on one table stays pairwise non-overlapping.
func TestCheckAvailability_NoDoubleBooking(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	var accepted []*reservation.Reservation
	attempts := []struct {
		start, end time.Time
	}{
		{at(18, 0), at(19, 30)},
		{at(19, 0), at(20, 0)},  // overlaps first, must be refused
		{at(19, 30), at(21, 0)}, // touches first, fits
		{at(20, 0), at(20, 30)}, // inside third, must be refused
		{at(21, 0), at(22, 0)},
	}

	for _, a := range attempts {
		candidate := mustInterval(t, a.start, a.end)
		if got := reservation.CheckAvailability(candidate, accepted, uuid.Nil); got.Available {
			accepted = append(accepted, buildAt(t, a.start, a.end))
		}
	}

	require.Len(t, accepted, 3)
	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			assert.False(t, accepted[i].Interval().Overlaps(accepted[j].Interval()),
				"accepted reservations %d and %d overlap", i, j)
		}
	}
}
