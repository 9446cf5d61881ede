package reservation

// Status is the reservation lifecycle state. Transitions are enforced by an
// explicit table; free-form status writes are rejected at the service boundary.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusConfirmed Status = "confirmed"
	StatusSeated    Status = "seated"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusBooked, StatusConfirmed, StatusSeated, StatusFinished, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// Blocks reports whether a reservation in this status occupies its table for
// conflict checks. Cancelled and no-show reservations never block.
func (s Status) Blocks() bool {
	switch s {
	case StatusBooked, StatusConfirmed, StatusSeated:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// transitions lists the legal next statuses per current status. Confirmation
// may be skipped for walk-ins that are seated straight away.
var transitions = map[Status][]Status{
	StatusBooked:    {StatusConfirmed, StatusSeated, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusSeated, StatusCancelled, StatusNoShow},
	StatusSeated:    {StatusFinished, StatusCancelled, StatusNoShow},
	StatusFinished:  {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Action is a staff-facing lifecycle operation, mapped onto a target status.
type Action string

const (
	ActionArrive Action = "arrive"
	ActionSeat   Action = "seat"
	ActionFinish Action = "finish"
	ActionNoShow Action = "no_show"
	ActionCancel Action = "cancel"
)

func (a Action) TargetStatus() (Status, bool) {
	switch a {
	case ActionArrive:
		return StatusConfirmed, true
	case ActionSeat:
		return StatusSeated, true
	case ActionFinish:
		return StatusFinished, true
	case ActionNoShow:
		return StatusNoShow, true
	case ActionCancel:
		return StatusCancelled, true
	default:
		return "", false
	}
}
