package hub

import "time"

// Context is one entry in the content-addressed context store.
type Context struct {
	ID         string
	Content    string
	ReportedBy string // "orchestrator" or the task_id that produced it
	TaskID     string
	CreatedAt  time.Time
}

// ContextItem is a single context a subagent reports for storage.
type ContextItem struct {
	ID      string
	Content string
}

// TrajectoryMessage is one role/content entry in a subagent's message log,
// carried back to the orchestrator for logging and token accounting.
type TrajectoryMessage struct {
	Role    string
	Content string
}

// SubagentMeta carries token-accounting metadata and the full message
// trajectory back to the orchestrator.
type SubagentMeta struct {
	Trajectory        []TrajectoryMessage
	NumTurns          int
	TotalInputTokens  int
	TotalOutputTokens int
}

// SubagentReport is what a completed subagent run hands back to the
// orchestrator via LaunchSubagent.
type SubagentReport struct {
	Contexts []ContextItem
	Comments string
	Meta     SubagentMeta
}
