// Package subagent implements the bounded per-task loop an orchestrator
// delegates work to: an explorer investigates read-only, a coder mutates
// the workspace, and both terminate by emitting a report action.
package subagent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nextlevelbuilder/hiveagent/internal/action"
	"github.com/nextlevelbuilder/hiveagent/internal/executor"
	"github.com/nextlevelbuilder/hiveagent/internal/handler"
	"github.com/nextlevelbuilder/hiveagent/internal/hub"
	"github.com/nextlevelbuilder/hiveagent/internal/llm"
	"github.com/nextlevelbuilder/hiveagent/internal/prompts"
	"github.com/nextlevelbuilder/hiveagent/internal/providers"
	"github.com/nextlevelbuilder/hiveagent/internal/state"
	"github.com/nextlevelbuilder/hiveagent/internal/tools"
	"github.com/nextlevelbuilder/hiveagent/internal/turn"
	"github.com/nextlevelbuilder/hiveagent/internal/turnlog"
)

// defaultMaxTurns is how many turns a subagent gets before it is forced to
// submit a report regardless of progress.
const defaultMaxTurns = 30

const forceReportMessage = "\n\n" +
	"CRITICAL: MAXIMUM TURNS REACHED\n" +
	"You have reached the maximum number of allowed turns.\n" +
	"You MUST now submit a report using ONLY the <report> action.\n" +
	"NO OTHER ACTIONS ARE ALLOWED.\n\n" +
	"Instructions:\n" +
	"1. Use ONLY the <report> action\n" +
	"2. Include ALL contexts you have discovered so far\n" +
	"3. In the comments section:\n" +
	"   - Summarize what you have accomplished\n" +
	"   - If the task is incomplete, explain what remains to be done\n" +
	"   - Describe what you were about to do next and why\n\n" +
	"SUBMIT YOUR REPORT NOW."

// Runner executes a single subagent task to completion.
type Runner struct {
	Client    *llm.Client
	Executor  executor.Executor
	Workspace string
	Restrict  bool
	MaxTurns  int
}

// NewRunner returns a Runner sharing client and executor with its caller
// (typically the orchestrator driver).
func NewRunner(client *llm.Client, exec executor.Executor, workspace string, restrict bool, maxTurns int) *Runner {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Runner{Client: client, Executor: exec, Workspace: workspace, Restrict: restrict, MaxTurns: maxTurns}
}

// Run drives task to completion and returns its report. A subagent has no
// access to the orchestrator's hub — it can only hand results back through
// the returned SubagentReport. log may be nil, in which case per-turn
// logging is skipped.
func (r *Runner) Run(ctx context.Context, task handler.SubagentTask, log *turnlog.Logger) hub.SubagentReport {
	h := handler.New(
		r.Executor,
		state.NewTodoManager(),
		state.NewScratchpadManager(),
		tools.NewFiles(r.Workspace, r.Restrict),
		tools.NewSearch(r.Workspace, r.Restrict),
		nil, // no hub: subagents cannot create or launch further tasks
		nil,
	)
	turnExec := turn.New(h)

	systemMessage, err := prompts.ForAgentType(task.AgentType)
	if err != nil {
		return hub.SubagentReport{Comments: fmt.Sprintf("Failed to start: %v", err)}
	}

	messages := []providers.Message{
		{Role: "system", Content: systemMessage},
		{Role: "user", Content: buildTaskPrompt(task)},
	}

	for turnNum := 1; turnNum <= r.MaxTurns; turnNum++ {
		llmResponse, err := r.Client.Send(ctx, messages)
		if err != nil {
			slog.Warn("subagent: llm call failed, continuing", "turn", turnNum, "error", err)
			messages = append(messages, providers.Message{
				Role:    "user",
				Content: fmt.Sprintf("Error occurred: %v. Please continue.", err),
			})
			continue
		}
		messages = append(messages, providers.Message{Role: "assistant", Content: llmResponse})

		result := turnExec.Execute(ctx, llmResponse)
		messages = append(messages, providers.Message{Role: "user", Content: strings.Join(result.EnvResponses, "\n")})

		logTurn(log, turnNum, task, llmResponse, result.EnvResponses, result.HasError, result.Done)

		if report, ok := findReport(result.ActionsExecuted); ok {
			rep := buildReport(report, messages, turnNum)
			logSummary(log, task, rep, false)
			return rep
		}
	}

	slog.Warn("subagent: max turns reached without report, forcing one", "max_turns", r.MaxTurns)
	messages = appendForceReport(messages)

	llmResponse, err := r.Client.Send(ctx, messages)
	if err == nil {
		messages = append(messages, providers.Message{Role: "assistant", Content: llmResponse})
		result := turnExec.Execute(ctx, llmResponse)
		logTurn(log, r.MaxTurns+1, task, llmResponse, result.EnvResponses, result.HasError, result.Done)
		if report, ok := findReport(result.ActionsExecuted); ok {
			rep := buildReport(report, messages, r.MaxTurns+1)
			logSummary(log, task, rep, false)
			return rep
		}
	} else {
		slog.Error("subagent: forced report call failed", "error", err)
	}

	rep := hub.SubagentReport{
		Comments: fmt.Sprintf("Task incomplete - reached maximum turns (%d) without proper completion. Agent failed to provide report when requested.", r.MaxTurns),
		Meta: hub.SubagentMeta{
			Trajectory:        toTrajectory(messages),
			NumTurns:          r.MaxTurns,
			TotalInputTokens:  llm.CountInputTokens(messages),
			TotalOutputTokens: llm.CountOutputTokens(messages),
		},
	}
	logSummary(log, task, rep, true)
	return rep
}

func logTurn(log *turnlog.Logger, turnNum int, task handler.SubagentTask, llmResponse string, envResponses []string, hasError, done bool) {
	if log == nil {
		return
	}
	log.LogTurn(turnNum, map[string]any{
		"agent_type":    task.AgentType,
		"title":         task.Title,
		"llm_response":  llmResponse,
		"env_responses": envResponses,
		"has_error":     hasError,
		"done":          done,
	})
}

func logSummary(log *turnlog.Logger, task handler.SubagentTask, report hub.SubagentReport, forcedFallback bool) {
	if log == nil {
		return
	}
	log.LogSummary(map[string]any{
		"agent_type":          task.AgentType,
		"title":               task.Title,
		"comments":            report.Comments,
		"num_turns":           report.Meta.NumTurns,
		"total_input_tokens":  report.Meta.TotalInputTokens,
		"total_output_tokens": report.Meta.TotalOutputTokens,
		"forced_fallback":     forcedFallback,
	})
}

func buildTaskPrompt(task handler.SubagentTask) string {
	var sections []string
	sections = append(sections, fmt.Sprintf("# Task: %s\n", task.Title))
	sections = append(sections, task.Description+"\n")

	if len(task.CtxStoreCtxts) > 0 {
		sections = append(sections, "## Provided Context\n")
		for id, content := range task.CtxStoreCtxts {
			sections = append(sections, fmt.Sprintf("### Context: %s\n", id))
			sections = append(sections, content+"\n")
		}
	}

	if len(task.BootstrapCtxts) > 0 {
		sections = append(sections, "## Relevant Files/Directories\n")
		for _, item := range task.BootstrapCtxts {
			sections = append(sections, fmt.Sprintf("- %s: %s\n", item.Path, item.Reason))
		}
	}

	sections = append(sections, "\nBegin your investigation/implementation now.")
	return strings.Join(sections, "\n")
}

func findReport(actions []action.Action) (*action.Report, bool) {
	for _, a := range actions {
		if report, ok := a.(*action.Report); ok {
			return report, true
		}
	}
	return nil, false
}

func buildReport(report *action.Report, messages []providers.Message, numTurns int) hub.SubagentReport {
	contexts := make([]hub.ContextItem, len(report.Contexts))
	for i, c := range report.Contexts {
		contexts[i] = hub.ContextItem{ID: c.ID, Content: c.Content}
	}
	return hub.SubagentReport{
		Contexts: contexts,
		Comments: report.Comments,
		Meta: hub.SubagentMeta{
			Trajectory:        toTrajectory(messages),
			NumTurns:          numTurns,
			TotalInputTokens:  llm.CountInputTokens(messages),
			TotalOutputTokens: llm.CountOutputTokens(messages),
		},
	}
}

// appendForceReport appends the force-report instruction to the last user
// message, matching the original, and returns the (possibly reallocated)
// slice. The last message is always role "user" here, since every turn ends
// by appending the environment's response, but a trailing append is kept as
// a fallback in case that invariant is ever violated.
func appendForceReport(messages []providers.Message) []providers.Message {
	if len(messages) > 0 && messages[len(messages)-1].Role == "user" {
		messages[len(messages)-1].Content += forceReportMessage
		return messages
	}
	return append(messages, providers.Message{Role: "user", Content: strings.TrimSpace(forceReportMessage)})
}

func toTrajectory(messages []providers.Message) []hub.TrajectoryMessage {
	out := make([]hub.TrajectoryMessage, len(messages))
	for i, m := range messages {
		out[i] = hub.TrajectoryMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
