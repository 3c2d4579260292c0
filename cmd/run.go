package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/hiveagent/internal/config"
	"github.com/nextlevelbuilder/hiveagent/internal/executor"
	"github.com/nextlevelbuilder/hiveagent/internal/llm"
	"github.com/nextlevelbuilder/hiveagent/internal/orchestrator"
	"github.com/nextlevelbuilder/hiveagent/internal/providers"
)

func runCmd() *cobra.Command {
	var instruction string
	var maxTurns int
	var logDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the orchestrator on a single instruction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if instruction == "" {
				return fmt.Errorf("--instruction is required")
			}
			return runOrchestrator(instruction, maxTurns, logDir)
		},
	}

	cmd.Flags().StringVar(&instruction, "instruction", "", "the task to hand to the orchestrator")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "override the orchestrator's max turns (0 = use config)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "directory to write per-turn JSON logs to (disabled if empty)")

	return cmd
}

func runOrchestrator(instruction string, maxTurnsFlag int, logDir string) error {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if maxTurnsFlag > 0 {
		cfg.MaxTurns = maxTurnsFlag
	}
	if logDir != "" {
		cfg.LogDir = logDir
	}

	provider, err := newProvider(cfg.Provider)
	if err != nil {
		return fmt.Errorf("construct provider: %w", err)
	}

	client := llm.New(provider, cfg.Provider.Model, cfg.Temperature, cfg.MaxTokens)
	exec := executor.NewLocal(cfg.Workspace)

	runner, err := orchestrator.New(client, exec, cfg.Workspace, cfg.RestrictToWorkspace, cfg.MaxTurns, cfg.SubagentMaxTurns, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	result := runner.Run(context.Background(), instruction)

	fmt.Printf("completed:          %v\n", result.Completed)
	fmt.Printf("finish message:     %s\n", result.FinishMessage)
	fmt.Printf("turns executed:     %d\n", result.TurnsExecuted)
	fmt.Printf("max turns reached:  %v\n", result.MaxTurnsReached)
	fmt.Printf("total input tokens: %d\n", result.TotalInputTokens)
	fmt.Printf("total output tokens:%d\n", result.TotalOutputTokens)

	return nil
}

func newProvider(p config.ProviderConfig) (providers.Provider, error) {
	switch p.Name {
	case "anthropic":
		return providers.NewAnthropic(p.APIKey, p.APIBase, p.Model), nil
	case "openai":
		return providers.NewOpenAICompat(p.APIKey, p.APIBase, p.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Name)
	}
}
