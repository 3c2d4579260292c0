package hub

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Hub is the central coordination point for an orchestrator run: it owns the
// task registry (H1: IDs are zero-padded, monotonically increasing) and the
// context store (H2: inserts never overwrite an existing ID).
//
// A sync.RWMutex guards both maps even though the current orchestrator/
// subagent driver topology only ever calls the hub from one goroutine at a
// time — any structure reachable from more than one call site gets this
// treatment, following the defensive-locking convention used throughout the
// example corpus.
type Hub struct {
	mu           sync.RWMutex
	tasks        map[string]*Task
	taskOrder    []string
	contextStore map[string]*Context
	contextOrder []string
	taskCounter  int
}

// New returns an empty hub.
func New() *Hub {
	return &Hub{
		tasks:        make(map[string]*Task),
		contextStore: make(map[string]*Context),
	}
}

// CreateTask registers a new task and returns its ID ("task_001", "task_002", ...).
func (h *Hub) CreateTask(agentType, title, description string, contextRefs []string, bootstrap []ContextBootstrapItem) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.taskCounter++
	id := fmt.Sprintf("task_%03d", h.taskCounter)

	h.tasks[id] = &Task{
		ID:               id,
		AgentType:        agentType,
		Title:            title,
		Description:      description,
		ContextRefs:      contextRefs,
		ContextBootstrap: bootstrap,
		Status:           TaskCreated,
		CreatedAt:        time.Now(),
	}
	h.taskOrder = append(h.taskOrder, id)

	slog.Info("hub: created task", "task_id", id, "title", title)
	return id
}

// GetTask returns the task by ID, or nil if it doesn't exist.
func (h *Hub) GetTask(id string) *Task {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tasks[id]
}

// UpdateTaskStatus sets a task's status, stamping CompletedAt when it
// transitions to TaskCompleted. Reports whether the task exists.
func (h *Hub) UpdateTaskStatus(id string, status TaskStatus) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	task, ok := h.tasks[id]
	if !ok {
		slog.Warn("hub: task not found", "task_id", id)
		return false
	}
	task.Status = status
	if status == TaskCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}
	slog.Info("hub: updated task status", "task_id", id, "status", status)
	return true
}

// ViewAllTasks renders every task and its status.
func (h *Hub) ViewAllTasks() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.tasks) == 0 {
		return "No tasks created yet."
	}

	symbols := map[TaskStatus]string{
		TaskCreated:   "○",
		TaskCompleted: "●",
		TaskFailed:    "✗",
	}

	lines := []string{"Tasks:"}
	for _, id := range h.taskOrder {
		task := h.tasks[id]
		symbol := symbols[task.Status]
		if symbol == "" {
			symbol = "?"
		}
		lines = append(lines, fmt.Sprintf("  %s [%s] %s (%s)", symbol, id, task.Title, task.AgentType))
		lines = append(lines, fmt.Sprintf("      Status: %s", task.Status))
		if len(task.ContextRefs) > 0 {
			lines = append(lines, fmt.Sprintf("      Context refs: %s", strings.Join(task.ContextRefs, ", ")))
		}
		if len(task.ContextBootstrap) > 0 {
			paths := make([]string, len(task.ContextBootstrap))
			for i, item := range task.ContextBootstrap {
				paths[i] = item.Path
			}
			lines = append(lines, fmt.Sprintf("      Bootstrap: %s", strings.Join(paths, ", ")))
		}
		if task.Result != nil {
			lines = append(lines, fmt.Sprintf("      Result: %s", task.Result.Comments))
		}
		if task.CompletedAt != nil {
			lines = append(lines, fmt.Sprintf("      Completed at: %s", task.CompletedAt.Format(time.RFC3339)))
		}
	}
	return strings.Join(lines, "\n")
}

// AddContext inserts a new context entry. Returns false without mutating
// the store if id already exists — context entries are append-only (H2).
func (h *Hub) AddContext(id, content, reportedBy, taskID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.contextStore[id]; exists {
		slog.Warn("hub: context already exists", "context_id", id)
		return false
	}

	h.contextStore[id] = &Context{
		ID:         id,
		Content:    content,
		ReportedBy: reportedBy,
		TaskID:     taskID,
		CreatedAt:  time.Now(),
	}
	h.contextOrder = append(h.contextOrder, id)
	slog.Info("hub: added context", "context_id", id)
	return true
}

// GetContextsForTask resolves a list of context IDs to their content,
// silently skipping any that are not found.
func (h *Hub) GetContextsForTask(refs []string) map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		if ctx, ok := h.contextStore[ref]; ok {
			out[ref] = ctx.Content
		} else {
			slog.Warn("hub: context not found", "context_id", ref)
		}
	}
	return out
}

// ViewContextStore renders every stored context.
func (h *Hub) ViewContextStore() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.contextStore) == 0 {
		return "Context store is empty."
	}

	lines := []string{"Context Store:"}
	for _, id := range h.contextOrder {
		ctx := h.contextStore[id]
		lines = append(lines, fmt.Sprintf("  Id: [%s]", id))
		lines = append(lines, fmt.Sprintf("     Content: %s", ctx.Content))
		lines = append(lines, fmt.Sprintf("     Reported by: %s", ctx.ReportedBy))
		if ctx.TaskID != "" {
			lines = append(lines, fmt.Sprintf("    Task: %s", ctx.TaskID))
		}
	}
	return strings.Join(lines, "\n")
}

// ProcessSubagentResult stores every context a subagent reported, marks the
// task completed, and returns the result the orchestrator sees in its prompt.
func (h *Hub) ProcessSubagentResult(taskID string, report SubagentReport) TaskResult {
	var stored []string
	for _, ctx := range report.Contexts {
		if ctx.ID == "" || ctx.Content == "" {
			continue
		}
		if h.AddContext(ctx.ID, ctx.Content, taskID, taskID) {
			stored = append(stored, ctx.ID)
		} else {
			slog.Warn("hub: context already exists, skipping", "context_id", ctx.ID)
		}
	}

	result := TaskResult{
		TaskID:           taskID,
		ContextIDsStored: stored,
		Comments:         report.Comments,
	}

	h.mu.Lock()
	if task, ok := h.tasks[taskID]; ok {
		task.Result = &result
	}
	h.mu.Unlock()

	h.UpdateTaskStatus(taskID, TaskCompleted)
	return result
}
