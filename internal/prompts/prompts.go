// Package prompts loads the static system message shown to each agent type,
// embedded at build time from markdown files.
package prompts

import (
	"embed"
	"fmt"
)

//go:embed templates/*.md
var templateFS embed.FS

var files = map[string]string{
	"orchestrator": "templates/orchestrator.md",
	"explorer":     "templates/explorer.md",
	"coder":        "templates/coder.md",
}

func load(agentType string) (string, error) {
	name, ok := files[agentType]
	if !ok {
		return "", fmt.Errorf("prompts: unknown agent type %q", agentType)
	}
	content, err := templateFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("prompts: %w", err)
	}
	return string(content), nil
}

// Orchestrator returns the orchestrator's system message.
func Orchestrator() (string, error) { return load("orchestrator") }

// Explorer returns the explorer subagent's system message.
func Explorer() (string, error) { return load("explorer") }

// Coder returns the coder subagent's system message.
func Coder() (string, error) { return load("coder") }

// ForAgentType returns the system message for "explorer" or "coder".
func ForAgentType(agentType string) (string, error) {
	if agentType != "explorer" && agentType != "coder" {
		return "", fmt.Errorf("prompts: unknown subagent type %q", agentType)
	}
	return load(agentType)
}
