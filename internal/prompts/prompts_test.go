package prompts

import "testing"

func TestOrchestratorReturnsContent(t *testing.T) {
	s, err := Orchestrator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == "" {
		t.Error("expected non-empty orchestrator prompt")
	}
}

func TestForAgentTypeExplorerAndCoder(t *testing.T) {
	for _, agentType := range []string{"explorer", "coder"} {
		s, err := ForAgentType(agentType)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", agentType, err)
		}
		if s == "" {
			t.Errorf("expected non-empty prompt for %q", agentType)
		}
	}
}

func TestForAgentTypeUnknownIsError(t *testing.T) {
	if _, err := ForAgentType("orchestrator"); err == nil {
		t.Error("expected error for orchestrator via ForAgentType")
	}
	if _, err := ForAgentType("bogus"); err == nil {
		t.Error("expected error for unknown agent type")
	}
}
