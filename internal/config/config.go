// Package config loads and validates runtime configuration for the agent
// runtime: which model/provider to call, where the workspace lives, and the
// turn budgets for the orchestrator and its subagents.
package config

import (
	"fmt"
	"sync"
)

// Config is the root configuration for a hiveagent run.
type Config struct {
	Provider         ProviderConfig `json:"provider"`
	Workspace        string         `json:"workspace"`
	RestrictToWorkspace bool        `json:"restrict_to_workspace"`
	MaxTurns         int            `json:"max_turns"`
	SubagentMaxTurns int            `json:"subagent_max_turns"`
	Temperature      float64        `json:"temperature"`
	MaxTokens        int            `json:"max_tokens"`
	LogDir           string         `json:"log_dir,omitempty"`
	mu               sync.RWMutex
}

// ProviderConfig selects and configures the LLM backend. APIKey is never
// read from the config file — only from environment — so it never ends up
// persisted to disk alongside the rest of the run's settings.
type ProviderConfig struct {
	Name    string `json:"name"`               // "anthropic" or "openai"
	Model   string `json:"model"`
	APIKey  string `json:"-"`
	APIBase string `json:"api_base,omitempty"`
}

// Validate returns an error describing the first configuration problem
// found, or nil if cfg is usable.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.Provider.Name {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("config: unknown provider %q (want \"anthropic\" or \"openai\")", c.Provider.Name)
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("config: no API key set (expected HIVEAGENT_API_KEY in the environment)")
	}
	if c.Workspace == "" {
		return fmt.Errorf("config: workspace must not be empty")
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("config: max_turns must be positive, got %d", c.MaxTurns)
	}
	if c.SubagentMaxTurns <= 0 {
		return fmt.Errorf("config: subagent_max_turns must be positive, got %d", c.SubagentMaxTurns)
	}
	return nil
}
