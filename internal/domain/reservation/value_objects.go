package reservation

import (
	"fmt"
	"strings"
	"time"
)

// Interval is the half-open occupation window [start, end) of a table.
type Interval struct {
	start time.Time
	end   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{start: start, end: end}, nil
}

func (iv Interval) Start() time.Time {
	return iv.start
}

func (iv Interval) End() time.Time {
	return iv.end
}

func (iv Interval) Duration() time.Duration {
	return iv.end.Sub(iv.start)
}

// Overlaps is the symmetric half-open overlap test: two intervals collide
// iff s1 < e2 && e1 > s2. Touching endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.start.Before(other.end) && iv.end.After(other.start)
}

func (iv Interval) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", iv.start.Format(time.RFC3339), iv.end.Format(time.RFC3339))
}

type PartySize struct {
	value int
}

func NewPartySize(value int) (PartySize, error) {
	if value < 1 {
		return PartySize{}, ErrInvalidPartySize
	}
	return PartySize{value: value}, nil
}

func (p PartySize) Value() int {
	return p.value
}

// Fits reports whether the party fits the table. Advisory only: an undersized
// table produces a warning, never a rejection.
func (p PartySize) Fits(capacity int) bool {
	return p.value <= capacity
}

type GuestName struct {
	value string
}

func NewGuestName(value string) (GuestName, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return GuestName{}, ErrEmptyGuestName
	}
	return GuestName{value: v}, nil
}

func (n GuestName) String() string {
	return n.value
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: strings.TrimSpace(value)}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
