package hub

import (
	"strings"
	"testing"
)

func TestCreateTaskIDsAreZeroPaddedAndMonotonic(t *testing.T) {
	h := New()
	id1 := h.CreateTask("explorer", "first", "desc", nil, nil)
	id2 := h.CreateTask("coder", "second", "desc", nil, nil)

	if id1 != "task_001" {
		t.Errorf("expected task_001, got %q", id1)
	}
	if id2 != "task_002" {
		t.Errorf("expected task_002, got %q", id2)
	}
}

func TestGetTaskMissingReturnsNil(t *testing.T) {
	h := New()
	if task := h.GetTask("task_999"); task != nil {
		t.Errorf("expected nil for missing task, got %+v", task)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	h := New()
	id := h.CreateTask("explorer", "t", "d", nil, nil)

	if ok := h.UpdateTaskStatus("task_999", TaskCompleted); ok {
		t.Error("expected false for unknown task id")
	}

	if ok := h.UpdateTaskStatus(id, TaskCompleted); !ok {
		t.Fatal("expected true")
	}
	task := h.GetTask(id)
	if task.Status != TaskCompleted {
		t.Errorf("expected completed status, got %q", task.Status)
	}
	if task.CompletedAt == nil {
		t.Error("expected CompletedAt to be stamped")
	}
}

func TestViewAllTasksEmpty(t *testing.T) {
	h := New()
	if got := h.ViewAllTasks(); got != "No tasks created yet." {
		t.Errorf("expected empty message, got %q", got)
	}
}

func TestViewAllTasksRendersContent(t *testing.T) {
	h := New()
	h.CreateTask("explorer", "investigate bug", "find root cause", []string{"ctx_1"}, nil)

	out := h.ViewAllTasks()
	for _, want := range []string{"task_001", "investigate bug", "explorer", "ctx_1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestAddContextRejectsDuplicateID(t *testing.T) {
	h := New()
	if ok := h.AddContext("ctx_1", "first", "orchestrator", ""); !ok {
		t.Fatal("expected first insert to succeed")
	}
	if ok := h.AddContext("ctx_1", "second", "orchestrator", ""); ok {
		t.Error("expected duplicate insert to be rejected")
	}

	contexts := h.GetContextsForTask([]string{"ctx_1"})
	if contexts["ctx_1"] != "first" {
		t.Errorf("expected original content preserved, got %q", contexts["ctx_1"])
	}
}

func TestGetContextsForTaskSkipsMissing(t *testing.T) {
	h := New()
	h.AddContext("ctx_1", "content", "orchestrator", "")

	out := h.GetContextsForTask([]string{"ctx_1", "ctx_missing"})
	if len(out) != 1 {
		t.Fatalf("expected 1 resolved context, got %d", len(out))
	}
	if _, ok := out["ctx_missing"]; ok {
		t.Error("expected missing context to be silently skipped")
	}
}

func TestViewContextStoreEmpty(t *testing.T) {
	h := New()
	if got := h.ViewContextStore(); got != "Context store is empty." {
		t.Errorf("expected empty message, got %q", got)
	}
}

func TestProcessSubagentResultStoresContextsAndCompletesTask(t *testing.T) {
	h := New()
	id := h.CreateTask("coder", "fix it", "desc", nil, nil)

	report := SubagentReport{
		Contexts: []ContextItem{
			{ID: "ctx_a", Content: "found the bug"},
			{ID: "", Content: "skip me, no id"},
		},
		Comments: "all done",
	}

	result := h.ProcessSubagentResult(id, report)

	if len(result.ContextIDsStored) != 1 || result.ContextIDsStored[0] != "ctx_a" {
		t.Errorf("expected only ctx_a stored, got %v", result.ContextIDsStored)
	}
	if result.Comments != "all done" {
		t.Errorf("unexpected comments: %q", result.Comments)
	}

	task := h.GetTask(id)
	if task.Status != TaskCompleted {
		t.Errorf("expected task marked completed, got %q", task.Status)
	}
	if task.Result == nil || task.Result.Comments != "all done" {
		t.Errorf("expected task result attached, got %+v", task.Result)
	}

	contexts := h.GetContextsForTask([]string{"ctx_a"})
	if contexts["ctx_a"] != "found the bug" {
		t.Errorf("expected context stored, got %q", contexts["ctx_a"])
	}
}

func TestViewContextStorePreservesInsertionOrder(t *testing.T) {
	h := New()
	// Deliberately out of alphabetical order: a sort would reorder these.
	h.AddContext("zeta", "first in", "orchestrator", "")
	h.AddContext("alpha", "second in", "orchestrator", "")
	h.AddContext("mu", "third in", "orchestrator", "")

	out := h.ViewContextStore()
	zetaIdx := strings.Index(out, "zeta")
	alphaIdx := strings.Index(out, "alpha")
	muIdx := strings.Index(out, "mu")
	if !(zetaIdx < alphaIdx && alphaIdx < muIdx) {
		t.Errorf("expected insertion order zeta, alpha, mu, got %q", out)
	}
}

func TestViewAllTasksPreservesCreationOrder(t *testing.T) {
	h := New()
	h.CreateTask("explorer", "zzz task", "d", nil, nil)
	h.CreateTask("coder", "aaa task", "d", nil, nil)

	out := h.ViewAllTasks()
	zzzIdx := strings.Index(out, "zzz task")
	aaaIdx := strings.Index(out, "aaa task")
	if !(zzzIdx < aaaIdx) {
		t.Errorf("expected creation order zzz then aaa, got %q", out)
	}
}

func TestProcessSubagentResultSkipsDuplicateContext(t *testing.T) {
	h := New()
	id := h.CreateTask("explorer", "t", "d", nil, nil)
	h.AddContext("ctx_dup", "original", "orchestrator", "")

	report := SubagentReport{Contexts: []ContextItem{{ID: "ctx_dup", Content: "overwrite attempt"}}}
	result := h.ProcessSubagentResult(id, report)

	if len(result.ContextIDsStored) != 0 {
		t.Errorf("expected no contexts stored for duplicate id, got %v", result.ContextIDsStored)
	}
	contexts := h.GetContextsForTask([]string{"ctx_dup"})
	if contexts["ctx_dup"] != "original" {
		t.Errorf("expected original content preserved, got %q", contexts["ctx_dup"])
	}
}
