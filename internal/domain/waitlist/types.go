package waitlist

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusArrived   Status = "arrived"
	StatusNotified  Status = "notified"
	StatusSeated    Status = "seated"
	StatusLeft      Status = "left"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusArrived, StatusNotified, StatusSeated, StatusLeft, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the entry still holds a place in the queue.
func (s Status) IsActive() bool {
	switch s {
	case StatusWaiting, StatusArrived, StatusNotified:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityVIP    Priority = "vip"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityVIP, PriorityUrgent:
		return true
	default:
		return false
	}
}
