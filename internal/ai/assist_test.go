package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/tasks"
)

func TestPhasedSubtasks(t *testing.T) {
	assert.Len(t, PhasedSubtasks(ComplexitySimple), 3)
	assert.Len(t, PhasedSubtasks(ComplexityMedium), 5)
	assert.Len(t, PhasedSubtasks(ComplexityComplex), 9)
	assert.Len(t, PhasedSubtasks("unknown"), 5)
	assert.Equal(t, "Deployment preparation", PhasedSubtasks(ComplexityComplex)[8])

	got := PhasedSubtasks(ComplexitySimple)
	got[0] = "changed"
	assert.Equal(t, "Research and planning phase", PhasedSubtasks(ComplexitySimple)[0])
}

func TestSuggestTasks(t *testing.T) {
	got := SuggestTasks("launch blog")
	assert.Len(t, got, 3)
	assert.Equal(t, "Research for: launch blog", got[0].Title)
	assert.Equal(t, tasks.PriorityHigh, got[2].Priority)
	assert.Equal(t, 4, got[2].EstimatedHours)
}

func TestAnalyzeProductivity(t *testing.T) {
	tuesday := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	friday := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	snapshot := []tasks.Task{
		{ID: "1", Status: tasks.StatusDone},
		{ID: "2", Status: tasks.StatusTodo},
		{ID: "3", Status: tasks.StatusInProgress},
	}
	recent := []activity.Activity{
		{Type: activity.TaskCreated, CreatedAt: tuesday},
		{Type: activity.TaskCreated, CreatedAt: tuesday},
		{Type: activity.TaskCreated, CreatedAt: friday},
		{Type: activity.TaskCompleted, CreatedAt: friday},
		{Type: activity.TaskCompleted, CreatedAt: tuesday},
		{Type: activity.TaskCompleted, CreatedAt: tuesday},
		{Type: activity.CommentAdded, CreatedAt: friday},
	}

	r := AnalyzeProductivity(snapshot, recent)
	assert.Equal(t, 33, r.CompletionRate)
	assert.Equal(t, 0.4, r.AvgTasksPerDay)
	assert.Equal(t, "Tuesday", r.MostProductiveDay)
	assert.Len(t, r.Recommendations, 3)
}

func TestAnalyzeProductivityEmpty(t *testing.T) {
	r := AnalyzeProductivity(nil, nil)
	assert.Equal(t, 0, r.CompletionRate)
	assert.Equal(t, 0.0, r.AvgTasksPerDay)
	assert.Empty(t, r.MostProductiveDay)
}

func TestAuditDescription(t *testing.T) {
	assert.Equal(t, `AI provided assistance: "short"`, AuditDescription("short"))

	long := strings.Repeat("é", 60)
	got := AuditDescription(long)
	assert.Equal(t, `AI provided assistance: "`+strings.Repeat("é", 50)+`..."`, got)

	exact := strings.Repeat("a", 50)
	assert.Equal(t, `AI provided assistance: "`+exact+`"`, AuditDescription(exact))
}
