package state

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/hiveagent/internal/action"
)

// maxLLMOutputPreview bounds how much of a turn's raw LLM reply is echoed
// back into the prompt on replay, to keep the rebuilt prompt from growing
// without bound across many turns.
const maxLLMOutputPreview = 500

// Turn records one perceive-act cycle: what the LLM said, which actions
// that produced, and what the environment answered for each.
type Turn struct {
	LLMOutput            string
	ActionsExecuted      []action.Action
	EnvResponses         []string
	SubagentTrajectories map[string]map[string]interface{}
}

// ToPrompt renders the turn for inclusion in a rebuilt prompt.
func (t Turn) ToPrompt() string {
	var parts []string

	output := t.LLMOutput
	if len(output) > maxLLMOutputPreview {
		parts = append(parts, fmt.Sprintf("Agent: %s...", output[:maxLLMOutputPreview]))
	} else {
		parts = append(parts, fmt.Sprintf("Agent: %s", output))
	}

	for _, resp := range t.EnvResponses {
		parts = append(parts, fmt.Sprintf("Env: %s", resp))
	}

	return strings.Join(parts, "\n")
}

// ConversationHistory is a FIFO-capped log of turns, replayed into the
// prompt each time it is rebuilt rather than kept as a growing message list.
type ConversationHistory struct {
	Turns    []Turn
	MaxTurns int
}

// NewConversationHistory returns a history capped at maxTurns (100 if <= 0).
func NewConversationHistory(maxTurns int) *ConversationHistory {
	if maxTurns <= 0 {
		maxTurns = 100
	}
	return &ConversationHistory{MaxTurns: maxTurns}
}

// AddTurn appends turn, evicting the oldest turns once MaxTurns is exceeded.
func (h *ConversationHistory) AddTurn(turn Turn) {
	h.Turns = append(h.Turns, turn)
	if len(h.Turns) > h.MaxTurns {
		h.Turns = h.Turns[len(h.Turns)-h.MaxTurns:]
	}
}

// ToPrompt renders the full history for inclusion in a rebuilt prompt.
func (h *ConversationHistory) ToPrompt() string {
	if len(h.Turns) == 0 {
		return "No previous interactions."
	}

	var blocks []string
	for i, turn := range h.Turns {
		blocks = append(blocks, fmt.Sprintf("--- Turn %d ---\n%s", i+1, turn.ToPrompt()))
	}
	return strings.Join(blocks, "\n\n")
}
