package tasks

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("task not found")

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
)

// ParseStatus accepts the board column names plus the "in_progress" spelling.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return StatusTodo, true
	case "inprogress", "in_progress":
		return StatusInProgress, true
	case "done":
		return StatusDone, true
	}
	return "", false
}

func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

type Priority string

const (
	PriorityUnset  Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityUnset, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities high(3) > medium(2) > low(1) > unset(0).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Assignee    string     `json:"assignee"`
	Tags        []string   `json:"tags"`
	Comments    []Comment  `json:"comments"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PastDue reports whether the task carries a due date strictly before now.
func (t Task) PastDue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// Overdue is PastDue for tasks that are not done yet.
func (t Task) Overdue(now time.Time) bool {
	return t.Status != StatusDone && t.PastDue(now)
}

type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	Mentions  []string  `json:"mentions"`
	CreatedAt time.Time `json:"created_at"`
}

// Patch holds the optional fields of a task update. Nil means unchanged.
type Patch struct {
	Title        *string
	Description  *string
	Status       *Status
	Priority     *Priority
	Assignee     *string
	DueDate      *time.Time
	ClearDueDate bool
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Assignee == nil && p.DueDate == nil && !p.ClearDueDate
}

type SearchFilter struct {
	Query    string
	Status   Status
	Priority Priority
	Assignee string
}

// ---- request bodies ----

type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Priority    string   `json:"priority" validate:"required,oneof=low medium high"`
	Status      string   `json:"status" validate:"omitempty,oneof=todo inprogress in_progress done"`
	DueDate     string   `json:"dueDate"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status" validate:"omitempty,oneof=todo inprogress in_progress done"`
	DueDate     *string `json:"dueDate"`
	Assignee    *string `json:"assignee" validate:"omitempty,max=200"`
}

type CommentRequest struct {
	Text     string   `json:"text" validate:"required,max=5000"`
	Mentions []string `json:"mentions" validate:"max=20"`
}

// ParseDueDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// An empty string means no due date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return &d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.New("dueDate must be YYYY-MM-DD or RFC 3339")
	}
	return &d, nil
}

// NormalizeTags lower-cases, trims and de-duplicates tags, dropping blanks.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
