package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:  "anthropic",
			Model: "claude-sonnet-4-5-20250929",
		},
		Workspace:           "~/.hiveagent/workspace",
		RestrictToWorkspace: true,
		MaxTurns:            50,
		SubagentMaxTurns:    30,
		Temperature:         0.7,
		MaxTokens:           4096,
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A missing
// file is not an error — defaults plus env overrides are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays environment variables onto the config. Env
// vars always take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	envStr("HIVEAGENT_MODEL", &c.Provider.Model)
	envStr("HIVEAGENT_API_KEY", &c.Provider.APIKey)
	envStr("HIVEAGENT_API_BASE", &c.Provider.APIBase)
	envStr("HIVEAGENT_WORKSPACE", &c.Workspace)
	envInt("HIVEAGENT_MAX_TURNS", &c.MaxTurns)
	envInt("HIVEAGENT_SUBAGENT_MAX_TURNS", &c.SubagentMaxTurns)

	c.Workspace = ExpandHome(c.Workspace)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
