package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ourtasker-backend/internal/tasks"
)

// ValidationError reports malformed engine input. Field names the offending
// value, e.g. "query" or "tasks[2].status".
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validateInput(query string, snapshot []tasks.Task) error {
	if !utf8.ValidString(query) {
		return &ValidationError{Field: "query", Reason: "must be valid UTF-8 text"}
	}
	if strings.TrimSpace(query) == "" {
		return &ValidationError{Field: "query", Reason: "is required"}
	}

	for i, t := range snapshot {
		field := func(name string) string { return fmt.Sprintf("tasks[%d].%s", i, name) }
		switch {
		case t.ID == "":
			return &ValidationError{Field: field("id"), Reason: "is required"}
		case strings.TrimSpace(t.Title) == "":
			return &ValidationError{Field: field("title"), Reason: "is required"}
		case !t.Status.Valid():
			return &ValidationError{Field: field("status"), Reason: fmt.Sprintf("unknown status %q", t.Status)}
		case !t.Priority.Valid():
			return &ValidationError{Field: field("priority"), Reason: fmt.Sprintf("unknown priority %q", t.Priority)}
		}
	}
	return nil
}
