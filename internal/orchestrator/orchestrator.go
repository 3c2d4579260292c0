// Package orchestrator runs the top-level agent loop: each turn it rebuilds
// a prompt from the current task, hub, and conversation-history state,
// calls the LLM, executes whatever actions come back, and repeats until a
// finish action lands or the turn budget runs out.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nextlevelbuilder/hiveagent/internal/executor"
	"github.com/nextlevelbuilder/hiveagent/internal/handler"
	"github.com/nextlevelbuilder/hiveagent/internal/hub"
	"github.com/nextlevelbuilder/hiveagent/internal/llm"
	"github.com/nextlevelbuilder/hiveagent/internal/prompts"
	"github.com/nextlevelbuilder/hiveagent/internal/providers"
	"github.com/nextlevelbuilder/hiveagent/internal/state"
	"github.com/nextlevelbuilder/hiveagent/internal/subagent"
	"github.com/nextlevelbuilder/hiveagent/internal/tools"
	"github.com/nextlevelbuilder/hiveagent/internal/turn"
	"github.com/nextlevelbuilder/hiveagent/internal/turnlog"
)

// defaultMaxTurns is how many turns the orchestrator gets before it stops
// regardless of whether the task finished.
const defaultMaxTurns = 50

// Result is the summary returned once a run stops, successfully or not.
type Result struct {
	Completed         bool
	FinishMessage     string
	TurnsExecuted     int
	MaxTurnsReached   bool
	TotalInputTokens  int
	TotalOutputTokens int
}

// Runner drives one orchestrator session end to end.
type Runner struct {
	Client        *llm.Client
	Hub           *hub.Hub
	History       *state.ConversationHistory
	Handler       *handler.Handler
	TurnExec      *turn.Executor
	SystemMessage string
	MaxTurns      int
	Log           *turnlog.Logger
	messages      []providers.Message
	done          bool
	finishMessage string
}

// New builds a Runner wired to exec for bash commands, rooted at workspace.
// Subagents launched via <launch_subagent> share exec and workspace, each
// bounded by subagentMaxTurns. logDir enables per-turn JSON logging for the
// orchestrator and every subagent it launches; pass "" to disable it.
func New(client *llm.Client, exec executor.Executor, workspace string, restrict bool, maxTurns, subagentMaxTurns int, logDir string) (*Runner, error) {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	systemMessage, err := prompts.Orchestrator()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	h := hub.New()
	history := state.NewConversationHistory(100)

	subagentRunner := subagent.NewRunner(client, exec, workspace, restrict, subagentMaxTurns)
	launch := func(ctx context.Context, task handler.SubagentTask, taskID string) (hub.SubagentReport, error) {
		slog.Info("orchestrator: launching subagent", "task_id", taskID, "agent_type", task.AgentType, "title", task.Title)
		taskLog := turnlog.New(logDir, fmt.Sprintf("subagent_%s", taskID))
		report := subagentRunner.Run(ctx, task, taskLog)
		return report, nil
	}

	hdlr := handler.New(
		exec,
		state.NewTodoManager(),
		state.NewScratchpadManager(),
		tools.NewFiles(workspace, restrict),
		tools.NewSearch(workspace, restrict),
		h,
		launch,
	)

	return &Runner{
		Client:        client,
		Hub:           h,
		History:       history,
		Handler:       hdlr,
		TurnExec:      turn.New(hdlr),
		SystemMessage: systemMessage,
		MaxTurns:      maxTurns,
		Log:           turnlog.New(logDir, "orchestrator"),
	}, nil
}

// Run executes instruction until the orchestrator reports done or MaxTurns
// is exhausted.
func (r *Runner) Run(ctx context.Context, instruction string) Result {
	turnsExecuted := 0

	for !r.done && turnsExecuted < r.MaxTurns {
		turnsExecuted++
		if err := r.executeTurn(ctx, instruction, turnsExecuted); err != nil {
			slog.Error("orchestrator: turn failed", "turn", turnsExecuted, "error", err)
		}
	}

	inputTokens, outputTokens := r.tokenTotals()

	result := Result{
		Completed:         r.done,
		FinishMessage:     r.finishMessage,
		TurnsExecuted:     turnsExecuted,
		MaxTurnsReached:   turnsExecuted >= r.MaxTurns,
		TotalInputTokens:  inputTokens,
		TotalOutputTokens: outputTokens,
	}

	r.Log.LogSummary(map[string]any{
		"instruction":         instruction,
		"completed":           result.Completed,
		"finish_message":      result.FinishMessage,
		"turns_executed":      result.TurnsExecuted,
		"max_turns_reached":   result.MaxTurnsReached,
		"total_input_tokens":  result.TotalInputTokens,
		"total_output_tokens": result.TotalOutputTokens,
	})

	return result
}

func (r *Runner) executeTurn(ctx context.Context, instruction string, turnNum int) error {
	userMessage := fmt.Sprintf("## Current Task\n%s\n\n%s", instruction, r.statePrompt())

	messages := []providers.Message{
		{Role: "system", Content: r.SystemMessage},
		{Role: "user", Content: userMessage},
	}
	if len(r.messages) == 0 {
		r.messages = append(r.messages, providers.Message{Role: "system", Content: r.SystemMessage})
	}
	r.messages = append(r.messages, providers.Message{Role: "user", Content: userMessage})

	llmResponse, err := r.Client.Send(ctx, messages)
	if err != nil {
		return fmt.Errorf("llm call: %w", err)
	}
	r.messages = append(r.messages, providers.Message{Role: "assistant", Content: llmResponse})

	result := r.TurnExec.Execute(ctx, llmResponse)

	if len(result.SubagentTrajectories) > 0 {
		slog.Info("orchestrator: received subagent reports", "turn", turnNum, "count", len(result.SubagentTrajectories))
	}

	turnRecord := state.Turn{
		LLMOutput:            llmResponse,
		ActionsExecuted:      result.ActionsExecuted,
		EnvResponses:         result.EnvResponses,
		SubagentTrajectories: result.SubagentTrajectories,
	}
	r.History.AddTurn(turnRecord)

	if result.Done {
		r.done = true
		r.finishMessage = result.FinishMessage
		slog.Info("orchestrator: task marked done", "turn", turnNum, "message", result.FinishMessage)
	}

	r.Log.LogTurn(turnNum, map[string]any{
		"instruction":   instruction,
		"user_message":  userMessage,
		"llm_response":  llmResponse,
		"env_responses": result.EnvResponses,
		"has_error":     result.HasError,
		"done":          result.Done,
		"finish_message": result.FinishMessage,
	})

	return nil
}

func (r *Runner) statePrompt() string {
	return fmt.Sprintf(
		"## Task Manager State\n\n%s\n\n## Context Store\n\n%s\n\n## Conversation History\n\n%s",
		r.Hub.ViewAllTasks(),
		r.Hub.ViewContextStore(),
		r.History.ToPrompt(),
	)
}

// tokenTotals sums the orchestrator's own message usage plus every
// subagent's reported usage across the recorded conversation history.
func (r *Runner) tokenTotals() (input, output int) {
	input = llm.CountInputTokens(r.messages)
	output = llm.CountOutputTokens(r.messages)

	for _, t := range r.History.Turns {
		for _, traj := range t.SubagentTrajectories {
			if v, ok := traj["total_input_tokens"].(int); ok {
				input += v
			}
			if v, ok := traj["total_output_tokens"].(int); ok {
				output += v
			}
		}
	}

	return input, output
}
