package waitlist

import (
	"sort"
	"time"
)

// NextPosition assigns the tail of the queue: max over active positions + 1.
func NextPosition(active []*Entry) int {
	max := 0
	for _, e := range active {
		if e.IsActive() && e.Position() > max {
			max = e.Position()
		}
	}
	return max + 1
}

// Renumber closes the gaps after a removal: active entries keep their
// relative order and are renumbered 1..n. Returns the entries whose
// position actually changed.
func Renumber(active []*Entry, now time.Time) []*Entry {
	queue := make([]*Entry, 0, len(active))
	for _, e := range active {
		if e.IsActive() {
			queue = append(queue, e)
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Position() < queue[j].Position()
	})

	var changed []*Entry
	for i, e := range queue {
		want := i + 1
		if e.Position() != want {
			e.AssignPosition(want, now)
			changed = append(changed, e)
		}
	}
	return changed
}

// EstimateWait gives the linear wait heuristic: half a turnover per party
// ahead, reflecting that tables turn over in parallel.
func EstimateWait(position, avgTurnoverMinutes int) time.Duration {
	if position < 1 {
		return 0
	}
	minutes := position * avgTurnoverMinutes / 2
	return time.Duration(minutes) * time.Minute
}
