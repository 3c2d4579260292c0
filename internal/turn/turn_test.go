package turn

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/hiveagent/internal/handler"
	"github.com/nextlevelbuilder/hiveagent/internal/state"
	"github.com/nextlevelbuilder/hiveagent/internal/tools"
)

type noopExecutor struct{}

func (noopExecutor) Execute(ctx context.Context, cmd string, timeoutSecs int) (string, int) {
	return "", 0
}
func (noopExecutor) ExecuteBackground(ctx context.Context, cmd string) {}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	dir := t.TempDir()
	h := handler.New(noopExecutor{}, state.NewTodoManager(), state.NewScratchpadManager(), tools.NewFiles(dir, true), tools.NewSearch(dir, true), nil, nil)
	return New(h)
}

func TestExecuteNoActionAttemptIsTerminal(t *testing.T) {
	e := newTestExecutor(t)
	result := e.Execute(context.Background(), "just rambling, no tags here")

	if !result.Done {
		t.Error("expected a reply with no action tags to be terminal")
	}
	if !result.HasError {
		t.Error("expected HasError true")
	}
	if len(result.EnvResponses) != 1 {
		t.Errorf("expected exactly 1 env response, got %d", len(result.EnvResponses))
	}
}

func TestExecuteAllTagsFailedIsRecoverable(t *testing.T) {
	e := newTestExecutor(t)
	result := e.Execute(context.Background(), "<bash>\ncmd: \n</bash>")

	if result.Done {
		t.Error("expected a reply whose tags all failed parsing to be recoverable, not terminal")
	}
	if !result.HasError {
		t.Error("expected HasError true")
	}
	if len(result.ActionsExecuted) != 0 {
		t.Errorf("expected no actions executed, got %d", len(result.ActionsExecuted))
	}
}

func TestExecuteRunsActionsInOrderAndStopsAtFinish(t *testing.T) {
	e := newTestExecutor(t)
	resp := "<scratchpad>\naction: add_note\ncontent: first\n</scratchpad>\n" +
		"<finish>\nmessage: all done\n</finish>\n" +
		"<scratchpad>\naction: add_note\ncontent: should not run\n</scratchpad>"

	result := e.Execute(context.Background(), resp)

	if !result.Done {
		t.Fatal("expected Done true after a finish action")
	}
	if result.FinishMessage != "all done" {
		t.Errorf("unexpected finish message: %q", result.FinishMessage)
	}
	if len(result.ActionsExecuted) != 2 {
		t.Fatalf("expected execution to stop after finish (2 actions), got %d", len(result.ActionsExecuted))
	}
}

func TestExecuteSuccessfulActionsDoNotSetDone(t *testing.T) {
	e := newTestExecutor(t)
	result := e.Execute(context.Background(), "<scratchpad>\naction: add_note\ncontent: a note\n</scratchpad>")

	if result.Done {
		t.Error("expected Done false without a finish action")
	}
	if result.HasError {
		t.Error("expected HasError false for a successful action")
	}
	if len(result.ActionsExecuted) != 1 {
		t.Errorf("expected 1 action executed, got %d", len(result.ActionsExecuted))
	}
}

func TestExecuteNoTrajectoriesWhenNoSubagentsLaunched(t *testing.T) {
	e := newTestExecutor(t)
	result := e.Execute(context.Background(), "<scratchpad>\naction: add_note\ncontent: a note\n</scratchpad>")

	if result.SubagentTrajectories != nil {
		t.Errorf("expected nil trajectories, got %v", result.SubagentTrajectories)
	}
}
