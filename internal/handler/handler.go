// Package handler dispatches parsed actions to the primitives that execute
// them — files, search, bash, todo/scratchpad state, and the coordination
// hub — and renders each result as the tagged output an agent expects back.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/hiveagent/internal/action"
	"github.com/nextlevelbuilder/hiveagent/internal/executor"
	"github.com/nextlevelbuilder/hiveagent/internal/hub"
	"github.com/nextlevelbuilder/hiveagent/internal/state"
	"github.com/nextlevelbuilder/hiveagent/internal/tools"
)

// noteTruncateLen bounds how much of a todo/note's content is echoed back in
// a handler response, to keep tool output terse.
const noteTruncateLen = 15

// SubagentTask is the resolved input a subagent run needs: its task
// description plus every context reference and bootstrap file/dir already
// read on its behalf.
type SubagentTask struct {
	AgentType      string
	Title          string
	Description    string
	CtxStoreCtxts  map[string]string
	BootstrapCtxts []BootstrapContext
}

// BootstrapContext is one resolved context_bootstrap entry: the file's
// content (or, for a trailing-"/" path, its directory listing) plus the
// reason the task creator gave for including it.
type BootstrapContext struct {
	Path    string
	Content string
	Reason  string
}

// LaunchFunc runs a subagent to completion and returns its report. The
// orchestrator driver supplies the real implementation; it is injected here
// rather than imported directly to avoid a handler <-> subagent import cycle
// (the subagent package itself builds a Handler with LaunchFunc left nil).
type LaunchFunc func(ctx context.Context, task SubagentTask, taskID string) (hub.SubagentReport, error)

// Handler executes every action variant an agent reply can contain.
//
// Hub and Launch are nil for a subagent's handler — subagents have no
// access to the orchestrator's coordination hub and cannot launch further
// subagents, matching the task hierarchy's single level of delegation.
type Handler struct {
	Executor   executor.Executor
	Todo       *state.TodoManager
	Scratchpad *state.ScratchpadManager
	Files      *tools.Files
	Search     *tools.Search
	Hub        *hub.Hub
	Launch     LaunchFunc

	trajectories map[string]map[string]interface{}
}

// New builds a Handler from its component primitives. hub and launch may be
// nil for a subagent-scoped handler.
func New(exec executor.Executor, todo *state.TodoManager, scratch *state.ScratchpadManager, files *tools.Files, search *tools.Search, h *hub.Hub, launch LaunchFunc) *Handler {
	return &Handler{
		Executor:     exec,
		Todo:         todo,
		Scratchpad:   scratch,
		Files:        files,
		Search:       search,
		Hub:          h,
		Launch:       launch,
		trajectories: make(map[string]map[string]interface{}),
	}
}

// Handle executes a single action and returns (response, isError). response
// is already wrapped in the `<x_output>...</x_output>` tag the LLM sees.
func (h *Handler) Handle(ctx context.Context, a action.Action) (string, bool) {
	switch act := a.(type) {
	case *action.Todo:
		return h.handleTodo(act)
	case *action.AddNote:
		return h.handleAddNote(act)
	case *action.ViewAllNotes:
		return tools.FormatOutput("scratchpad", h.Scratchpad.ViewAll()), false
	case *action.Read:
		content, isErr := h.Files.Read(act.FilePath, act.Offset, act.Limit)
		return tools.FormatOutput("file", content), isErr
	case *action.Write:
		content, isErr := h.Files.Write(act.FilePath, act.Content)
		return tools.FormatOutput("file", content), isErr
	case *action.Edit:
		content, isErr := h.Files.Edit(act.FilePath, act.OldString, act.NewString, act.ReplaceAll)
		return tools.FormatOutput("file", content), isErr
	case *action.MultiEdit:
		edits := make([]tools.EditSpec, len(act.Edits))
		for i, e := range act.Edits {
			edits[i] = tools.EditSpec{OldString: e.OldString, NewString: e.NewString, ReplaceAll: e.ReplaceAll}
		}
		content, isErr := h.Files.MultiEdit(act.FilePath, edits)
		return tools.FormatOutput("file", content), isErr
	case *action.FileMetadata:
		content, isErr := h.Files.Metadata(act.FilePaths)
		return tools.FormatOutput("file", content), isErr
	case *action.WriteTempScript:
		content, isErr := h.Files.Write(act.FilePath, act.Content)
		return tools.FormatOutput("file", content), isErr
	case *action.Grep:
		content, isErr := h.Search.Grep(act.Pattern, act.Path, act.Include)
		return tools.FormatOutput("search", content), isErr
	case *action.Glob:
		content, isErr := h.Search.Glob(act.Pattern, act.Path)
		return tools.FormatOutput("search", content), isErr
	case *action.LS:
		content, isErr := h.Search.LS(act.Path, act.Ignore)
		return tools.FormatOutput("search", content), isErr
	case *action.Bash:
		return h.handleBash(ctx, act)
	case *action.Finish:
		return tools.FormatOutput("finish", fmt.Sprintf("Task marked as complete: %s", act.Message)), false
	case *action.TaskCreate:
		return h.handleTaskCreate(ctx, act)
	case *action.AddContext:
		return h.handleAddContext(act)
	case *action.LaunchSubagent:
		return h.handleLaunchSubagent(ctx, act)
	case *action.Report:
		return tools.FormatOutput("report", "Report submission successful"), false
	default:
		return tools.FormatOutput("unknown", fmt.Sprintf("[ERROR] Unknown action type: %T", a)), true
	}
}

func truncate(s string) string {
	if len(s) > noteTruncateLen {
		return s[:noteTruncateLen] + "..."
	}
	return s
}

func (h *Handler) handleTodo(act *action.Todo) (string, bool) {
	var results []string
	hasError := false
	viewAll := act.ViewAll

	for _, op := range act.Operations {
		switch op.Action {
		case "add":
			id := h.Todo.Add(op.Content)
			results = append(results, fmt.Sprintf("Added todo [%d]: %s", id, truncate(op.Content)))
		case "complete":
			item, ok := h.Todo.Get(op.TaskID)
			switch {
			case !ok:
				results = append(results, fmt.Sprintf("[ERROR] Task %d not found", op.TaskID))
				hasError = true
			case item.Status == state.TodoCompleted:
				results = append(results, fmt.Sprintf("Task %d is already completed", op.TaskID))
			default:
				h.Todo.Complete(op.TaskID)
				results = append(results, fmt.Sprintf("Completed task [%d]: %s", op.TaskID, truncate(item.Content)))
			}
		case "delete":
			item, ok := h.Todo.Get(op.TaskID)
			if !ok {
				results = append(results, fmt.Sprintf("[ERROR] Task %d not found", op.TaskID))
				hasError = true
			} else {
				h.Todo.Delete(op.TaskID)
				results = append(results, fmt.Sprintf("Deleted task [%d]: %s", op.TaskID, truncate(item.Content)))
			}
		case "view_all":
			// handled below, after every operation has run
			viewAll = true
		}
	}

	response := strings.Join(results, "\n")
	if viewAll {
		response += "\n\n" + h.Todo.ViewAll()
	}
	return tools.FormatOutput("todo", response), hasError
}

func (h *Handler) handleAddNote(act *action.AddNote) (string, bool) {
	idx := h.Scratchpad.AddNote(act.Content)
	return tools.FormatOutput("scratchpad", fmt.Sprintf("Added note %d to scratchpad: %s", idx+1, truncate(act.Content))), false
}

func (h *Handler) handleBash(ctx context.Context, act *action.Bash) (string, bool) {
	if act.Block {
		output, exitCode := h.Executor.Execute(ctx, act.Cmd, act.TimeoutSecs)
		return tools.FormatOutput("bash", output), exitCode != 0
	}
	h.Executor.ExecuteBackground(ctx, act.Cmd)
	return tools.FormatOutput("bash", "Command started in background"), false
}

func (h *Handler) handleTaskCreate(ctx context.Context, act *action.TaskCreate) (string, bool) {
	if h.Hub == nil {
		return tools.FormatOutput("task", "[ERROR] Task creation is not available to this agent"), true
	}

	bootstrap := make([]hub.ContextBootstrapItem, len(act.ContextBootstrap))
	for i, item := range act.ContextBootstrap {
		bootstrap[i] = hub.ContextBootstrapItem{Path: item.Path, Reason: item.Reason}
	}

	taskID := h.Hub.CreateTask(act.AgentType, act.Title, act.Description, act.ContextRefs, bootstrap)
	response := fmt.Sprintf("Created task %s: %s", taskID, act.Title)

	if act.AutoLaunch {
		launchResponse, launchIsErr := h.handleLaunchSubagent(ctx, &action.LaunchSubagent{TaskID: taskID})
		response += "\n" + launchResponse
		return tools.FormatOutput("task", response), launchIsErr
	}
	return tools.FormatOutput("task", response), false
}

func (h *Handler) handleAddContext(act *action.AddContext) (string, bool) {
	if h.Hub == nil {
		return tools.FormatOutput("context", "[ERROR] Context store is not available to this agent"), true
	}

	ok := h.Hub.AddContext(act.ID, act.Content, act.ReportedBy, act.TaskID)
	if ok {
		return tools.FormatOutput("context", fmt.Sprintf("Added context '%s' to store", act.ID)), false
	}
	return tools.FormatOutput("context", fmt.Sprintf("[WARNING] Context '%s' already exists in store", act.ID)), true
}

func (h *Handler) handleLaunchSubagent(ctx context.Context, act *action.LaunchSubagent) (string, bool) {
	if h.Hub == nil || h.Launch == nil {
		return tools.FormatOutput("subagent", "[ERROR] Launching subagents is not available to this agent"), true
	}

	task := h.Hub.GetTask(act.TaskID)
	if task == nil {
		return tools.FormatOutput("subagent", fmt.Sprintf("[ERROR] Task %s not found", act.TaskID)), true
	}

	ctxStoreCtxts := h.Hub.GetContextsForTask(task.ContextRefs)

	var bootstrapCtxts []BootstrapContext
	for _, item := range task.ContextBootstrap {
		if strings.HasSuffix(item.Path, "/") {
			content, _ := h.Search.LS(item.Path, nil)
			bootstrapCtxts = append(bootstrapCtxts, BootstrapContext{Path: item.Path, Content: content, Reason: item.Reason})
			continue
		}
		offset, limit := 0, 1000
		content, _ := h.Files.Read(item.Path, &offset, &limit)
		bootstrapCtxts = append(bootstrapCtxts, BootstrapContext{Path: item.Path, Content: content, Reason: item.Reason})
	}

	subagentTask := SubagentTask{
		AgentType:      task.AgentType,
		Title:          task.Title,
		Description:    task.Description,
		CtxStoreCtxts:  ctxStoreCtxts,
		BootstrapCtxts: bootstrapCtxts,
	}

	report, err := h.Launch(ctx, subagentTask, act.TaskID)
	if err != nil {
		return tools.FormatOutput("subagent", fmt.Sprintf("[ERROR] Subagent run failed: %v", err)), true
	}

	h.trajectories[act.TaskID] = map[string]interface{}{
		"agent_type":          task.AgentType,
		"title":               task.Title,
		"num_turns":           report.Meta.NumTurns,
		"total_input_tokens":  report.Meta.TotalInputTokens,
		"total_output_tokens": report.Meta.TotalOutputTokens,
	}

	result := h.Hub.ProcessSubagentResult(act.TaskID, report)

	lines := []string{
		fmt.Sprintf("Subagent completed task %s", act.TaskID),
		fmt.Sprintf("Contexts stored: %s", strings.Join(result.ContextIDsStored, ", ")),
	}
	if result.Comments != "" {
		lines = append(lines, fmt.Sprintf("Comments: %s", result.Comments))
	}
	return tools.FormatOutput("subagent", strings.Join(lines, "\n")), false
}

// TakeTrajectories returns every subagent trajectory recorded since the last
// call and clears the internal store — the orchestrator driver pulls this
// once per turn to attach to its Turn record.
func (h *Handler) TakeTrajectories() map[string]map[string]interface{} {
	out := h.trajectories
	h.trajectories = make(map[string]map[string]interface{})
	return out
}
