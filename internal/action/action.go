// Package action defines the typed Action variants an agent reply can
// contain, along with the validation rules each variant enforces once its
// YAML payload has been decoded.
package action

import "fmt"

// Action is implemented by every action variant. Kind returns the tag name
// it was parsed from, used for error reporting and dispatch.
type Action interface {
	Kind() string
}

// Bash executes a shell command via the configured Executor.
type Bash struct {
	Cmd         string `yaml:"cmd"`
	Block       bool   `yaml:"block"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

func (Bash) Kind() string { return "bash" }

func (a *Bash) setDefaults() {
	if a.TimeoutSecs == 0 {
		a.TimeoutSecs = 30
	}
}

func (a Bash) validate() error {
	if a.Cmd == "" {
		return fmt.Errorf("cmd is required")
	}
	if a.TimeoutSecs <= 0 || a.TimeoutSecs > 300 {
		return fmt.Errorf("timeout_secs must be in (0, 300], got %d", a.TimeoutSecs)
	}
	return nil
}

// Finish marks the current turn loop (subagent or orchestrator) as done.
type Finish struct {
	Message string `yaml:"message"`
}

func (Finish) Kind() string { return "finish" }

func (a *Finish) setDefaults() {
	if a.Message == "" {
		a.Message = "Task completed"
	}
}

// TodoOperation is one entry inside a batch <todo> action.
type TodoOperation struct {
	Action  string `yaml:"action"`
	Content string `yaml:"content,omitempty"`
	TaskID  int    `yaml:"task_id,omitempty"`
}

func (op TodoOperation) validate() error {
	switch op.Action {
	case "add":
		if op.Content == "" {
			return fmt.Errorf("'add' action requires 'content'")
		}
	case "complete", "delete":
		if op.TaskID < 1 {
			return fmt.Errorf("'%s' action requires positive task_id", op.Action)
		}
	case "view_all":
		// no required fields
	default:
		return fmt.Errorf("unknown todo operation %q", op.Action)
	}
	return nil
}

// Todo batches one or more todo-list operations in a single action.
type Todo struct {
	Operations []TodoOperation `yaml:"operations"`
	ViewAll    bool            `yaml:"view_all"`
}

func (Todo) Kind() string { return "todo" }

func (a Todo) validate() error {
	if len(a.Operations) == 0 {
		return fmt.Errorf("operations must have at least 1 item")
	}
	for i, op := range a.Operations {
		if err := op.validate(); err != nil {
			return fmt.Errorf("operations[%d]: %w", i, err)
		}
	}
	return nil
}

// Read reads a file, optionally windowed by offset/limit.
type Read struct {
	FilePath string `yaml:"file_path"`
	Offset   *int   `yaml:"offset,omitempty"`
	Limit    *int   `yaml:"limit,omitempty"`
}

func (Read) Kind() string { return "read" }

func (a Read) validate() error {
	if a.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	if a.Offset != nil && *a.Offset < 0 {
		return fmt.Errorf("offset must be >= 0")
	}
	if a.Limit != nil && *a.Limit <= 0 {
		return fmt.Errorf("limit must be > 0")
	}
	return nil
}

// Write overwrites (or creates) a file with content.
type Write struct {
	FilePath string `yaml:"file_path"`
	Content  string `yaml:"content"`
}

func (Write) Kind() string { return "write" }

func (a Write) validate() error {
	if a.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	return nil
}

// Edit replaces a single occurrence (or all occurrences) of old_string with
// new_string inside a file.
type Edit struct {
	FilePath   string `yaml:"file_path"`
	OldString  string `yaml:"old_string"`
	NewString  string `yaml:"new_string"`
	ReplaceAll bool   `yaml:"replace_all"`
}

func (Edit) Kind() string { return "edit" }

func (a Edit) validate() error {
	if a.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	return nil
}

// EditOperation is one entry inside a <multi_edit> action.
type EditOperation struct {
	OldString  string `yaml:"old_string"`
	NewString  string `yaml:"new_string"`
	ReplaceAll bool   `yaml:"replace_all"`
}

// MultiEdit applies a sequence of edits to a single file.
type MultiEdit struct {
	FilePath string          `yaml:"file_path"`
	Edits    []EditOperation `yaml:"edits"`
}

func (MultiEdit) Kind() string { return "multi_edit" }

func (a MultiEdit) validate() error {
	if a.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	if len(a.Edits) == 0 {
		return fmt.Errorf("edits must have at least 1 item")
	}
	return nil
}

// FileMetadata requests size/mtime/existence metadata for up to 10 files.
type FileMetadata struct {
	FilePaths []string `yaml:"file_paths"`
}

func (FileMetadata) Kind() string { return "metadata" }

func (a FileMetadata) validate() error {
	if len(a.FilePaths) == 0 {
		return fmt.Errorf("file_paths must have at least 1 item")
	}
	if len(a.FilePaths) > 10 {
		return fmt.Errorf("file_paths must have at most 10 items, got %d", len(a.FilePaths))
	}
	return nil
}

// Grep searches file contents with a regular expression.
type Grep struct {
	Pattern string `yaml:"pattern"`
	Path    string `yaml:"path,omitempty"`
	Include string `yaml:"include,omitempty"`
}

func (Grep) Kind() string { return "grep" }

func (a Grep) validate() error {
	if a.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	return nil
}

// Glob finds files by name pattern.
type Glob struct {
	Pattern string `yaml:"pattern"`
	Path    string `yaml:"path,omitempty"`
}

func (Glob) Kind() string { return "glob" }

func (a Glob) validate() error {
	if a.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	return nil
}

// LS lists a directory's contents, optionally filtering out ignore patterns.
type LS struct {
	Path   string   `yaml:"path"`
	Ignore []string `yaml:"ignore,omitempty"`
}

func (LS) Kind() string { return "ls" }

func (a LS) validate() error {
	if a.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// AddNote appends a note to the scratchpad.
type AddNote struct {
	Content string `yaml:"content"`
}

func (AddNote) Kind() string { return "add_note" }

func (a AddNote) validate() error {
	if a.Content == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

// ViewAllNotes renders the full scratchpad.
type ViewAllNotes struct{}

func (ViewAllNotes) Kind() string { return "view_all_notes" }

// ContextBootstrapItem names a file a subagent should read before starting,
// along with the reason it's relevant.
type ContextBootstrapItem struct {
	Path   string `yaml:"path"`
	Reason string `yaml:"reason"`
}

func (i ContextBootstrapItem) validate() error {
	if i.Path == "" || i.Reason == "" {
		return fmt.Errorf("context_bootstrap item needs 'path' and 'reason'")
	}
	return nil
}

// AgentTypeExplorer and AgentTypeCoder are the only valid TaskCreate.AgentType values.
const (
	AgentTypeExplorer = "explorer"
	AgentTypeCoder    = "coder"
)

// TaskCreate registers a new task in the hub.
type TaskCreate struct {
	AgentType         string                 `yaml:"agent_type"`
	Title             string                 `yaml:"title"`
	Description       string                 `yaml:"description"`
	ContextRefs       []string               `yaml:"context_refs,omitempty"`
	ContextBootstrap  []ContextBootstrapItem `yaml:"context_bootstrap,omitempty"`
	AutoLaunch        bool                   `yaml:"auto_launch"`
}

func (TaskCreate) Kind() string { return "task_create" }

func (a TaskCreate) validate() error {
	if a.AgentType != AgentTypeExplorer && a.AgentType != AgentTypeCoder {
		return fmt.Errorf("agent_type must be %q or %q, got %q", AgentTypeExplorer, AgentTypeCoder, a.AgentType)
	}
	if a.Title == "" {
		return fmt.Errorf("title is required")
	}
	if a.Description == "" {
		return fmt.Errorf("description is required")
	}
	for i, item := range a.ContextBootstrap {
		if err := item.validate(); err != nil {
			return fmt.Errorf("context_bootstrap[%d]: %w", i, err)
		}
	}
	return nil
}

// AddContext inserts a new entry into the content-addressed context store.
type AddContext struct {
	ID         string `yaml:"id"`
	Content    string `yaml:"content"`
	ReportedBy string `yaml:"reported_by"`
	TaskID     string `yaml:"task_id,omitempty"`
}

func (AddContext) Kind() string { return "add_context" }

func (a *AddContext) setDefaults() {
	if a.ReportedBy == "" {
		a.ReportedBy = "?"
	}
}

func (a AddContext) validate() error {
	if a.ID == "" {
		return fmt.Errorf("id is required")
	}
	if a.Content == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

// LaunchSubagent starts the subagent driver for a previously created task.
type LaunchSubagent struct {
	TaskID string `yaml:"task_id"`
}

func (LaunchSubagent) Kind() string { return "launch_subagent" }

func (a LaunchSubagent) validate() error {
	if a.TaskID == "" {
		return fmt.Errorf("task_id is required")
	}
	return nil
}

// ContextItem is a single context entry attached to a Report.
type ContextItem struct {
	ID      string `yaml:"id"`
	Content string `yaml:"content"`
}

// Report is emitted by a subagent to hand results back to the orchestrator.
type Report struct {
	Contexts []ContextItem `yaml:"contexts,omitempty"`
	Comments string        `yaml:"comments"`
}

func (Report) Kind() string { return "report" }

// WriteTempScript writes a throwaway script file (e.g. to be run via bash).
type WriteTempScript struct {
	FilePath string `yaml:"file_path"`
	Content  string `yaml:"content"`
}

func (WriteTempScript) Kind() string { return "write_temp_script" }

func (a WriteTempScript) validate() error {
	if a.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	return nil
}
