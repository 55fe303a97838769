package ai

import (
	"fmt"
	"strings"
	"time"

	"ourtasker-backend/internal/tasks"
)

func renderSummary(s Stats, insights []string) string {
	var b strings.Builder

	b.WriteString(summaryHeader)
	b.WriteString("\n\n**Current Status:**\n")
	fmt.Fprintf(&b, "- Total tasks: %d\n", s.Total)
	if s.Total == 0 {
		b.WriteString("- Completed: 0\n")
	} else {
		fmt.Fprintf(&b, "- Completed: %d (%d%%)\n", s.Completed, s.CompletionPercent)
	}
	fmt.Fprintf(&b, "- In Progress: %d\n", s.InProgress)
	fmt.Fprintf(&b, "- High Priority: %d\n", s.HighPriority)
	fmt.Fprintf(&b, "- Overdue: %d\n", s.Overdue)

	b.WriteString("\n**Insights:**\n")
	writeBullets(&b, insights)

	return strings.TrimRight(b.String(), "\n")
}

func renderDeadlines(open []tasks.Task, now time.Time) string {
	entries := make([]string, 0, len(open))
	for i, t := range open {
		date, reason := SuggestedDeadline(t.Priority, now)
		entries = append(entries, fmt.Sprintf("%d. **%s**\n   Suggested: %s\n   Reason: %s",
			i+1, t.Title, date.Format(suggestedDateLayout), reason))
	}

	var b strings.Builder
	b.WriteString(deadlineHeader)
	b.WriteString("\n\n")
	b.WriteString(joinEntries(entries))
	b.WriteString("\n\n💡 **Tips:**\n")
	writeBullets(&b, deadlineTips)

	return strings.TrimRight(b.String(), "\n")
}

func renderBreakdown(open []tasks.Task) string {
	entries := make([]string, 0, len(open))
	for _, t := range open {
		var e strings.Builder
		fmt.Fprintf(&e, "🎯 **%s:**\n", t.Title)
		writeNumbered(&e, SubtasksFor(t.Title))
		entries = append(entries, strings.TrimRight(e.String(), "\n"))
	}

	var b strings.Builder
	b.WriteString(subtaskHeader)
	b.WriteString("\n\n")
	b.WriteString(joinEntries(entries))
	b.WriteString("\n\n✨ **Best Practices:**\n")
	writeBullets(&b, subtaskPractices)

	return strings.TrimRight(b.String(), "\n")
}

// joinEntries separates entries by a blank line.
func joinEntries(entries []string) string {
	if len(entries) == 0 {
		return noOpenTasksLine
	}
	return strings.Join(entries, "\n\n")
}

func renderFocus(next []tasks.Task) string {
	var b strings.Builder

	b.WriteString(focusHeader)
	b.WriteString("\n\n**Next Actions:**\n")

	if len(next) == 0 {
		b.WriteString(noOpenTasksLine)
		b.WriteString("\n")
	}
	for i, t := range next {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, t.Title, priorityLabel(t.Priority))
	}

	b.WriteString("\n**Productivity Tips:**\n")
	writeBullets(&b, focusTips)

	return strings.TrimRight(b.String(), "\n")
}

func priorityLabel(p tasks.Priority) string {
	if p == tasks.PriorityUnset {
		return "no priority"
	}
	return string(p) + " priority"
}

func writeBullets(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
}

func writeNumbered(b *strings.Builder, lines []string) {
	for i, l := range lines {
		fmt.Fprintf(b, "%d. %s\n", i+1, l)
	}
}
