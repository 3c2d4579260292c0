// Package turn executes one perceive-act cycle: parse an LLM reply into
// actions, run each through a handler, and collect what the environment
// answered back.
package turn

import (
	"context"
	"fmt"

	"github.com/nextlevelbuilder/hiveagent/internal/action"
	"github.com/nextlevelbuilder/hiveagent/internal/handler"
	"github.com/nextlevelbuilder/hiveagent/internal/parser"
)

// Result is what one turn produced.
type Result struct {
	ActionsExecuted      []action.Action
	EnvResponses         []string
	HasError             bool
	FinishMessage        string
	Done                 bool
	SubagentTrajectories map[string]map[string]interface{}
}

// Executor runs a single turn against a shared Handler. It holds no
// per-turn state of its own — the handler and its underlying primitives are
// what actually carry state across turns.
type Executor struct {
	Handler *handler.Handler
}

// New returns a turn executor bound to h.
func New(h *handler.Handler) *Executor {
	return &Executor{Handler: h}
}

// Execute parses llmOutput and runs every action it names, in order,
// stopping early on a Finish action. A reply with no recognizable action
// tags at all is reported as a terminal, unrecoverable turn (Done=true); a
// reply whose tags all failed to parse is reported as recoverable
// (Done=false) so the agent gets a chance to retry.
func (e *Executor) Execute(ctx context.Context, llmOutput string) Result {
	parsed := parser.Parse(llmOutput)

	if !parsed.FoundActionAttempt {
		return Result{
			EnvResponses: []string{"No actions were attempted."},
			HasError:     true,
			Done:         true,
		}
	}

	var envResponses []string
	hasError := false
	for _, parseErr := range parsed.Errors {
		envResponses = append(envResponses, fmt.Sprintf("[PARSE ERROR] %s", parseErr))
		hasError = true
	}

	if len(parsed.Errors) > 0 && len(parsed.Actions) == 0 {
		return Result{
			EnvResponses: envResponses,
			HasError:     true,
			Done:         false,
		}
	}

	var actionsExecuted []action.Action
	var finishMessage string
	done := false

	for _, act := range parsed.Actions {
		output, isError := e.Handler.Handle(ctx, act)
		actionsExecuted = append(actionsExecuted, act)
		if isError {
			hasError = true
		}
		envResponses = append(envResponses, output)

		if fin, ok := act.(*action.Finish); ok {
			finishMessage = fin.Message
			done = true
			break
		}
	}

	trajectories := e.Handler.TakeTrajectories()
	if len(trajectories) == 0 {
		trajectories = nil
	}

	return Result{
		ActionsExecuted:      actionsExecuted,
		EnvResponses:         envResponses,
		HasError:             hasError,
		FinishMessage:        finishMessage,
		Done:                 done,
		SubagentTrajectories: trajectories,
	}
}
