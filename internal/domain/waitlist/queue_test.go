//go:build unit

package waitlist_test

import (
	"testing"
	"time"

	"tablebook/internal/domain/waitlist"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(t *testing.T, name string, position int) *waitlist.Entry {
	t.Helper()
	e, err := waitlist.NewEntry(uuid.New(), name, "090-0000-0000", 2, waitlist.PriorityNormal, "")
	require.NoError(t, err)
	e.AssignPosition(position, time.Now())
	return e
}

func TestNextPosition(t *testing.T) {
	now := time.Now()

	t.Run("empty queue starts at 1", func(t *testing.T) {
		assert.Equal(t, 1, waitlist.NextPosition(nil))
	})

	t.Run("appends after the active tail", func(t *testing.T) {
		entries := []*waitlist.Entry{
			newEntry(t, "a", 1),
			newEntry(t, "b", 2),
			newEntry(t, "c", 3),
		}
		assert.Equal(t, 4, waitlist.NextPosition(entries))
	})

	t.Run("closed entries do not hold positions", func(t *testing.T) {
		a := newEntry(t, "a", 1)
		b := newEntry(t, "b", 2)
		require.NoError(t, b.SetStatus(waitlist.StatusLeft, now))
		assert.Equal(t, 2, waitlist.NextPosition([]*waitlist.Entry{a, b}))
	})
}

func TestRenumber(t *testing.T) {
	now := time.Now()

	t.Run("closes the gap after a removal", func(t *testing.T) {
		a := newEntry(t, "a", 1)
		b := newEntry(t, "b", 2)
		c := newEntry(t, "c", 3)
		require.NoError(t, b.SetStatus(waitlist.StatusLeft, now))

		changed := waitlist.Renumber([]*waitlist.Entry{a, b, c}, now)

		assert.Equal(t, 1, a.Position())
		assert.Equal(t, 2, c.Position())
		require.Len(t, changed, 1)
		assert.Equal(t, c.ID(), changed[0].ID())

		// A subsequent enqueue takes the freed tail position.
		assert.Equal(t, 3, waitlist.NextPosition([]*waitlist.Entry{a, b, c}))
	})

	t.Run("already contiguous queue is untouched", func(t *testing.T) {
		a := newEntry(t, "a", 1)
		b := newEntry(t, "b", 2)
		assert.Empty(t, waitlist.Renumber([]*waitlist.Entry{a, b}, now))
	})

	t.Run("relative order survives renumbering", func(t *testing.T) {
		c := newEntry(t, "c", 7)
		a := newEntry(t, "a", 2)
		b := newEntry(t, "b", 5)

		waitlist.Renumber([]*waitlist.Entry{c, a, b}, now)

		assert.Equal(t, 1, a.Position())
		assert.Equal(t, 2, b.Position())
		assert.Equal(t, 3, c.Position())
	})
}

func TestEstimateWait(t *testing.T) {
	assert.Equal(t, 45*time.Minute, waitlist.EstimateWait(1, 90))
	assert.Equal(t, 90*time.Minute, waitlist.EstimateWait(2, 90))
	assert.Equal(t, 135*time.Minute, waitlist.EstimateWait(3, 90))
	assert.Equal(t, time.Duration(0), waitlist.EstimateWait(0, 90))
}

func TestEntry_SetStatus(t *testing.T) {
	now := time.Now()

	t.Run("transition timestamps are recorded", func(t *testing.T) {
		e := newEntry(t, "a", 1)

		require.NoError(t, e.SetStatus(waitlist.StatusArrived, now))
		require.NotNil(t, e.ArrivedAt())

		require.NoError(t, e.SetStatus(waitlist.StatusNotified, now.Add(time.Minute)))
		require.NotNil(t, e.NotifiedAt())

		require.NoError(t, e.SetStatus(waitlist.StatusSeated, now.Add(2*time.Minute)))
		require.NotNil(t, e.SeatedAt())
		assert.False(t, e.IsActive())
	})

	t.Run("closed entries reject further changes", func(t *testing.T) {
		e := newEntry(t, "a", 1)
		require.NoError(t, e.SetStatus(waitlist.StatusLeft, now))

		err := e.SetStatus(waitlist.StatusWaiting, now)
		assert.ErrorIs(t, err, waitlist.ErrEntryClosed)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		e := newEntry(t, "a", 1)
		assert.ErrorIs(t, e.SetStatus(waitlist.Status("vaporized"), now), waitlist.ErrInvalidStatus)
	})
}
