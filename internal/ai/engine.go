// Package ai is the rule-based task assistant: it routes a free-text query
// to one of a handful of intents and renders canned guidance from the
// user's task snapshot. Respond is pure and safe for concurrent use.
package ai

import (
	"slices"
	"strings"
	"time"

	"ourtasker-backend/internal/tasks"
)

type Intent string

const (
	IntentSummary          Intent = "summary"
	IntentDeadline         Intent = "deadline"
	IntentSubtaskBreakdown Intent = "subtask_breakdown"
	IntentFocus            Intent = "focus"
	IntentDefault          Intent = "default"
)

// IntentRule maps a set of substrings to an intent.
type IntentRule struct {
	Intent   Intent
	Keywords []string
}

// IntentRules is evaluated in order; the first rule with a matching keyword
// wins, so "schedule a subtask breakdown" is a deadline query.
var IntentRules = []IntentRule{
	{Intent: IntentSummary, Keywords: []string{"summary", "overview"}},
	{Intent: IntentDeadline, Keywords: []string{"deadline", "schedule"}},
	{Intent: IntentSubtaskBreakdown, Keywords: []string{"subtask", "break down"}},
	{Intent: IntentFocus, Keywords: []string{"focus", "productive", "next"}},
}

// Classify expects an already lower-cased query.
func Classify(query string) Intent {
	for _, rule := range IntentRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(query, kw) {
				return rule.Intent
			}
		}
	}
	return IntentDefault
}

type Response struct {
	Intent      Intent   `json:"-"`
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions"`
}

// Respond answers query against snapshot. now is sampled once by the caller
// and used for every date comparison in the response.
func Respond(query string, snapshot []tasks.Task, now time.Time) (Response, error) {
	if err := validateInput(query, snapshot); err != nil {
		return Response{}, err
	}

	intent := Classify(strings.ToLower(query))
	stats := ComputeStats(snapshot, now)

	var text string
	switch intent {
	case IntentSummary:
		text = renderSummary(stats, GenerateInsights(snapshot, now))
	case IntentDeadline:
		text = renderDeadlines(openTasks(snapshot, deadlineSampleSize), now)
	case IntentSubtaskBreakdown:
		text = renderBreakdown(openTasks(snapshot, subtaskSampleSize))
	case IntentFocus:
		text = renderFocus(NextTasks(snapshot, now, focusSampleSize))
	default:
		text = capabilitiesText
	}

	return Response{
		Intent:      intent,
		Text:        text,
		Suggestions: slices.Clone(followUps[intent]),
	}, nil
}

// openTasks returns up to n tasks that are not done, in snapshot order.
func openTasks(snapshot []tasks.Task, n int) []tasks.Task {
	out := make([]tasks.Task, 0, n)
	for _, t := range snapshot {
		if len(out) == n {
			break
		}
		if t.Status != tasks.StatusDone {
			out = append(out, t)
		}
	}
	return out
}

// SubtasksFor picks the canned checklist for a task title.
func SubtasksFor(title string) []string {
	lower := strings.ToLower(title)
	for _, c := range checklists {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return slices.Clone(c.steps)
			}
		}
	}
	return slices.Clone(genericChecklist)
}

// SuggestedDeadline returns today+offset for the priority and the reason shown to the user.
func SuggestedDeadline(p tasks.Priority, now time.Time) (time.Time, string) {
	rule, ok := deadlineRules[p]
	if !ok {
		rule = standardDeadline
	}
	return now.AddDate(0, 0, rule.days), rule.reason
}
