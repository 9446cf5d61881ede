package schedule

import (
	"errors"
	"time"
)

var (
	ErrInvalidGrid = errors.New("invalid grid configuration")
	ErrOffGrid     = errors.New("time is not aligned to the slot grid")
	ErrOutOfRange  = errors.New("time is outside the schedulable day")
)

// Grid maps wall-clock time onto the discrete slot axis of a service day.
// The axis starts at DayStartHour on the anchor date and runs a full 24 hours,
// so times past midnight (say 00:30) still index onto the previous day's axis.
type Grid struct {
	dayStartHour int
	slotMinutes  int
}

func NewGrid(dayStartHour, slotMinutes int) (Grid, error) {
	if dayStartHour < 0 || dayStartHour > 23 {
		return Grid{}, ErrInvalidGrid
	}
	if slotMinutes <= 0 || (24*60)%slotMinutes != 0 {
		return Grid{}, ErrInvalidGrid
	}
	return Grid{dayStartHour: dayStartHour, slotMinutes: slotMinutes}, nil
}

func (g Grid) DayStartHour() int { return g.dayStartHour }
func (g Grid) SlotMinutes() int  { return g.slotMinutes }

// SlotCount is the number of slots on one day axis.
func (g Grid) SlotCount() int {
	return 24 * 60 / g.slotMinutes
}

// AxisStart is the instant slot 0 of the given anchor date begins.
func (g Grid) AxisStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), g.dayStartHour, 0, 0, 0, day.Location())
}

// SlotOf converts t into a slot index on the axis anchored at day.
// t must lie within [AxisStart, AxisStart+24h) and be aligned to the grid.
func (g Grid) SlotOf(t time.Time, day time.Time) (int, error) {
	start := g.AxisStart(day)
	offset := t.Sub(start)
	if offset < 0 || offset >= 24*time.Hour {
		return 0, ErrOutOfRange
	}

	minutes := int(offset / time.Minute)
	if offset%time.Minute != 0 || minutes%g.slotMinutes != 0 {
		return 0, ErrOffGrid
	}
	return minutes / g.slotMinutes, nil
}

// TimeOf is the inverse of SlotOf for a valid slot index.
func (g Grid) TimeOf(slot int, day time.Time) (time.Time, error) {
	if slot < 0 || slot >= g.SlotCount() {
		return time.Time{}, ErrOutOfRange
	}
	return g.AxisStart(day).Add(time.Duration(slot*g.slotMinutes) * time.Minute), nil
}

// Align floors t to the nearest preceding grid boundary.
func (g Grid) Align(t time.Time) time.Time {
	step := time.Duration(g.slotMinutes) * time.Minute
	return t.Truncate(step)
}

// IsAligned reports whether t sits exactly on a grid boundary.
func (g Grid) IsAligned(t time.Time) bool {
	return g.Align(t).Equal(t)
}

// ServiceDay resolves which axis date t belongs to: early-morning times
// before DayStartHour count as the previous service day.
func (g Grid) ServiceDay(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if t.Hour() < g.dayStartHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
