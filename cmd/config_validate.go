package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/hiveagent/internal/config"
)

func configCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Inspect or validate the runtime configuration",
	}
	root.AddCommand(configValidateCmd())
	return root
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the config file and report whether it is usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()

			cfg, err := config.Load(cfgPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "config load failed: %s\n", err)
				return err
			}

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "config invalid: %s\n", err)
				return err
			}

			fmt.Printf("config OK: %s\n", cfgPath)
			fmt.Printf("  provider:           %s (%s)\n", cfg.Provider.Name, cfg.Provider.Model)
			fmt.Printf("  workspace:          %s\n", cfg.Workspace)
			fmt.Printf("  restrict workspace: %v\n", cfg.RestrictToWorkspace)
			fmt.Printf("  max turns:          %d\n", cfg.MaxTurns)
			fmt.Printf("  subagent max turns: %d\n", cfg.SubagentMaxTurns)
			return nil
		},
	}
}
