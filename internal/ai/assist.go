package ai

import (
	"math"
	"time"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/tasks"
)

type TaskSuggestion struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Priority       tasks.Priority `json:"priority"`
	EstimatedHours int            `json:"estimatedHours"`
}

// SuggestTasks splits a free-text goal into research, planning and execution tasks.
func SuggestTasks(description string) []TaskSuggestion {
	return []TaskSuggestion{
		{
			Title:          "Research for: " + description,
			Description:    "Gather information and resources needed",
			Priority:       tasks.PriorityMedium,
			EstimatedHours: 2,
		},
		{
			Title:          "Plan implementation: " + description,
			Description:    "Create detailed implementation strategy",
			Priority:       tasks.PriorityHigh,
			EstimatedHours: 1,
		},
		{
			Title:          "Execute: " + description,
			Description:    "Complete the main work",
			Priority:       tasks.PriorityHigh,
			EstimatedHours: 4,
		},
	}
}

type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

var phaseSteps = []string{
	"Research and planning phase",
	"Initial setup and configuration",
	"Core implementation",
	"Testing and validation",
	"Documentation and cleanup",
}

var complexExtraSteps = []string{
	"Performance optimization",
	"Security review",
	"User acceptance testing",
	"Deployment preparation",
}

// PhasedSubtasks returns 3, 5 or 9 generic steps for simple, medium and
// complex work. Anything else is treated as medium.
func PhasedSubtasks(c Complexity) []string {
	switch c {
	case ComplexitySimple:
		return append([]string(nil), phaseSteps[:3]...)
	case ComplexityComplex:
		out := append([]string(nil), phaseSteps...)
		return append(out, complexExtraSteps...)
	}
	return append([]string(nil), phaseSteps...)
}

type ProductivityReport struct {
	CompletionRate    int      `json:"completionRate"`
	AvgTasksPerDay    float64  `json:"avgTasksPerDay"`
	MostProductiveDay string   `json:"mostProductiveDay,omitempty"`
	Recommendations   []string `json:"recommendations"`
}

var productivityRecommendations = []string{
	"Try time-blocking for better focus",
	"Break large tasks into smaller subtasks",
	"Use the AI assistant for task prioritization",
}

// AnalyzeProductivity derives completion rate from the task list and pace
// from recent activity. The activity window is treated as one week.
func AnalyzeProductivity(snapshot []tasks.Task, recent []activity.Activity) ProductivityReport {
	done := 0
	for _, t := range snapshot {
		if t.Status == tasks.StatusDone {
			done++
		}
	}

	created := 0
	var completedOn [7]int
	for _, a := range recent {
		switch a.Type {
		case activity.TaskCreated:
			created++
		case activity.TaskCompleted:
			completedOn[a.CreatedAt.Weekday()]++
		}
	}

	best, bestCount := time.Sunday, 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if completedOn[d] > bestCount {
			best, bestCount = d, completedOn[d]
		}
	}
	day := ""
	if bestCount > 0 {
		day = best.String()
	}

	return ProductivityReport{
		CompletionRate:    CompletionPercent(done, len(snapshot)),
		AvgTasksPerDay:    math.Round(float64(created)/7*10) / 10,
		MostProductiveDay: day,
		Recommendations:   append([]string(nil), productivityRecommendations...),
	}
}

// AuditDescription is the activity-feed line for an assistant query.
func AuditDescription(query string) string {
	const limit = 50
	if r := []rune(query); len(r) > limit {
		query = string(r[:limit]) + "..."
	}
	return `AI provided assistance: "` + query + `"`
}
