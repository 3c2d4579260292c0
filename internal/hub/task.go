// Package hub implements the orchestrator's coordination point: a task
// registry and a content-addressed context store. Subagents never hold a
// handle to it; their results reach it only through ProcessSubagentResult.
package hub

import "time"

// TaskStatus is a task's lifecycle state.
type TaskStatus string

const (
	TaskCreated   TaskStatus = "created"
	TaskCompleted TaskStatus = "completed"
	// TaskFailed is a valid status with no current writer — no driver path
	// marks a task failed today, but hub consumers (ViewAllTasks) already
	// render it distinctly for a future caller.
	TaskFailed TaskStatus = "failed"
)

// ContextBootstrapItem names a file a subagent should read before starting.
type ContextBootstrapItem struct {
	Path   string
	Reason string
}

// Task is one unit of delegated work tracked by the hub.
type Task struct {
	ID                string
	AgentType         string // "explorer" or "coder"
	Title             string
	Description       string
	ContextRefs       []string
	ContextBootstrap  []ContextBootstrapItem
	Status            TaskStatus
	CreatedAt         time.Time
	CompletedAt       *time.Time
	Result            *TaskResult
}

// TaskResult is what ProcessSubagentResult hands back to the orchestrator.
type TaskResult struct {
	TaskID           string
	ContextIDsStored []string
	Comments         string
}
