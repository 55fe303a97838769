package ai

import (
	"sort"
	"time"

	"ourtasker-backend/internal/tasks"
)

// NextTasks ranks the open tasks and returns at most limit of them.
//
// Order: past-due first, then priority high to unset, then earliest due
// date, with undated tasks after dated ones. Ties keep snapshot order.
func NextTasks(snapshot []tasks.Task, now time.Time, limit int) []tasks.Task {
	open := make([]tasks.Task, 0, len(snapshot))
	for _, t := range snapshot {
		if t.Status != tasks.StatusDone {
			open = append(open, t)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		return rankBefore(open[i], open[j], now)
	})

	if limit >= 0 && len(open) > limit {
		open = open[:limit]
	}
	return open
}

func rankBefore(a, b tasks.Task, now time.Time) bool {
	if ad, bd := a.PastDue(now), b.PastDue(now); ad != bd {
		return ad
	}
	if ar, br := a.Priority.Rank(), b.Priority.Rank(); ar != br {
		return ar > br
	}
	switch {
	case a.DueDate != nil && b.DueDate != nil:
		return a.DueDate.Before(*b.DueDate)
	case a.DueDate != nil:
		// undated ranks after dated at equal priority, keeping the order total
		return true
	}
	return false
}
