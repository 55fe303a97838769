package ai

import "ourtasker-backend/internal/tasks"

// Template text for the assistant. Renderers in render.go fill these in;
// nothing here is control flow.

const (
	summaryHeader  = "📊 **Task Summary**"
	deadlineHeader = "🗓️ **Deadline Suggestions**"
	subtaskHeader  = "🔧 **Task Breakdown Suggestions**"
	focusHeader    = "🎯 **Focus Recommendations**"

	insightTooManyInProgress = "Consider focusing on fewer tasks at once for better completion rates"
	insightOverdueFormat     = "You have %d overdue tasks that need immediate attention"
	insightHighPendingFormat = "%d high-priority tasks are waiting to be started"
	insightWellOrganized     = "Your task management looks well organized!"

	noOpenTasksLine = "No open tasks right now. Add a task to get tailored suggestions."

	// More than this many in-progress tasks triggers the focus warning.
	maxHealthyInProgress = 3

	deadlineSampleSize = 3
	subtaskSampleSize  = 2
	focusSampleSize    = 3

	suggestedDateLayout = "1/2/2006"
)

const capabilitiesText = `🤖 **AI Assistant Ready**

I can help you with:

📋 **Task Management:**
- Summarize your workload and priorities
- Suggest deadlines and time estimates
- Break down complex tasks into manageable steps

📊 **Productivity Insights:**
- Analyze your completion patterns
- Recommend optimal task ordering
- Identify workflow bottlenecks

⚡ **Smart Suggestions:**
- Generate task descriptions
- Suggest relevant tags and categories
- Provide focus and energy management tips

What would you like to explore?`

var deadlineTips = []string{
	"Add buffer time for complex tasks",
	"Consider your energy levels throughout the week",
	"Break large tasks into smaller milestones",
}

var subtaskPractices = []string{
	"Keep subtasks under 3 hours each",
	"Make them specific and actionable",
	"Include testing and review steps",
}

var focusTips = []string{
	"Start with your highest energy tasks",
	"Use time-blocking for deep work",
	"Take breaks between complex tasks",
}

var followUps = map[Intent][]string{
	IntentSummary: {
		"What should I focus on next?",
		"Show me overdue tasks",
		"Generate a daily plan",
	},
	IntentDeadline: {
		"Generate subtasks for these deadlines",
		"How can I improve time estimation?",
		"Create a weekly schedule",
	},
	IntentSubtaskBreakdown: {
		"Create these subtasks automatically",
		"Estimate time for each subtask",
		"Prioritize these subtasks",
	},
	IntentFocus: {
		"Create a time-blocked schedule",
		"Set up focus session timer",
		"Analyze my productivity patterns",
	},
	IntentDefault: {
		"Summarize today's tasks",
		"Suggest task deadlines",
		"Help me prioritize work",
		"Generate subtasks for my project",
	},
}

type deadlineRule struct {
	days   int
	reason string
}

var deadlineRules = map[tasks.Priority]deadlineRule{
	tasks.PriorityHigh:   {days: 2, reason: "High priority - needs immediate attention"},
	tasks.PriorityMedium: {days: 5, reason: "Reasonable timeline for medium complexity"},
	tasks.PriorityLow:    {days: 7, reason: "Flexible deadline with buffer time"},
}

var standardDeadline = deadlineRule{days: 7, reason: "Standard timeline recommendation"}

// Checklists are matched against the lower-cased task title, first match wins.
type checklist struct {
	keywords []string
	steps    []string
}

var checklists = []checklist{
	{
		keywords: []string{"design"},
		steps: []string{
			"Research design inspiration",
			"Create wireframes and mockups",
			"Design system and components",
			"Create responsive layouts",
			"Get feedback and iterate",
			"Finalize designs and assets",
		},
	},
	{
		keywords: []string{"api", "backend"},
		steps: []string{
			"Design API endpoints",
			"Set up database schema",
			"Implement core functionality",
			"Add authentication and security",
			"Write tests and documentation",
			"Deploy and monitor",
		},
	},
}

var genericChecklist = []string{
	"Research and gather requirements",
	"Plan implementation approach",
	"Set up initial structure",
	"Core development work",
	"Testing and validation",
	"Documentation and review",
}
