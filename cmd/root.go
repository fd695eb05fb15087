package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crewhq/crew/pkg/orchestrate"
	"github.com/crewhq/crew/pkg/prompt"
	"github.com/crewhq/crew/pkg/workspace"
)

// NewRootCmd builds the crew root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crew",
		Short:         "Developer onboarding for multi-repository workspaces",
		Long:          `crew provisions a multi-repository workspace and drives per-repository lifecycle commands (dev, start, build, test, stop, down) across npm and Docker-Compose projects.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to the crew config file (default ~/.crew/config.json)")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewRunCmd())
	for _, lifecycle := range []string{"dev", "start", "build", "test"} {
		cmd.AddCommand(NewLifecycleCmd(lifecycle))
	}
	cmd.AddCommand(NewStopCmd())
	cmd.AddCommand(NewKillCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewLogsCmd())

	return cmd
}

// loadConfig resolves the --config flag and loads the configuration.
func loadConfig(cmd *cobra.Command) (*workspace.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = workspace.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return workspace.LoadConfig(path)
}

// newOrchestrator wires the orchestrator for interactive CLI use.
func newOrchestrator(cfg *workspace.Config) *orchestrate.Orchestrator {
	return orchestrate.New(cfg, prompt.TUISelector{}, log, os.Stdout)
}
