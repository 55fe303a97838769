package ai

import (
	"fmt"
	"math"
	"time"

	"ourtasker-backend/internal/tasks"
)

type Stats struct {
	Total               int `json:"total"`
	Completed           int `json:"completed"`
	InProgress          int `json:"in_progress"`
	HighPriority        int `json:"high_priority"`
	HighPriorityPending int `json:"high_priority_pending"`
	Overdue             int `json:"overdue"`
	CompletionPercent   int `json:"completion_percent"`
}

func ComputeStats(snapshot []tasks.Task, now time.Time) Stats {
	var s Stats
	s.Total = len(snapshot)
	for _, t := range snapshot {
		switch t.Status {
		case tasks.StatusDone:
			s.Completed++
		case tasks.StatusInProgress:
			s.InProgress++
		}
		if t.Priority == tasks.PriorityHigh {
			s.HighPriority++
			if t.Status == tasks.StatusTodo {
				s.HighPriorityPending++
			}
		}
		if t.Overdue(now) {
			s.Overdue++
		}
	}
	s.CompletionPercent = CompletionPercent(s.Completed, s.Total)
	return s
}

// CompletionPercent is round(completed/total*100), and 0 for an empty list.
func CompletionPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// GenerateInsights returns the summary insight lines in fixed order:
// in-progress overload, overdue, pending high priority. When none apply
// it returns the single well-organized line.
func GenerateInsights(snapshot []tasks.Task, now time.Time) []string {
	s := ComputeStats(snapshot, now)

	var out []string
	if s.InProgress > maxHealthyInProgress {
		out = append(out, insightTooManyInProgress)
	}
	if s.Overdue > 0 {
		out = append(out, fmt.Sprintf(insightOverdueFormat, s.Overdue))
	}
	if s.HighPriorityPending > 0 {
		out = append(out, fmt.Sprintf(insightHighPendingFormat, s.HighPriorityPending))
	}
	if len(out) == 0 {
		out = append(out, insightWellOrganized)
	}
	return out
}
