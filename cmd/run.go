package cmd

import (
	"github.com/spf13/cobra"

	"github.com/crewhq/crew/pkg/command"
)

// NewRunCmd is the generic entry point: any logical command, recognized or
// not, against any subset of the workspace.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command> [repos...]",
		Short: "Run a lifecycle command across repositories",
		Long: `Runs a logical command (dev, start, build, test, lint, or any npm script
name) for the given repositories. With no repositories listed, the whole
workspace is used. Compose-managed repositories are driven through their
compose manifest; everything else goes through npm.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(cmd, args[0], args[1:])
		},
	}
	addRunFlags(cmd)
	return cmd
}

// NewLifecycleCmd builds a convenience alias like `crew dev` for `crew run dev`.
func NewLifecycleCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " [repos...]",
		Short: "Run " + name + " across repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(cmd, name, args)
		},
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("env", "dev", "Target environment (dev, prod, ...)")
	cmd.Flags().BoolP("parallel", "p", false, "Run repositories in parallel (all must succeed)")
	cmd.Flags().Bool("watch", false, "Run tests in watch mode")
	cmd.Flags().Bool("fix", false, "Apply lint fixes")
	cmd.Flags().Bool("volumes", false, "Remove volumes on down")
	cmd.Flags().String("workspace", "", "Override the configured workspace path")
}

func runLifecycle(cmd *cobra.Command, name string, repos []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
		cfg.WorkspacePath = ws
	}

	opts := command.Options{}
	opts.Environment, _ = cmd.Flags().GetString("env")
	opts.Parallel, _ = cmd.Flags().GetBool("parallel")
	opts.Watch, _ = cmd.Flags().GetBool("watch")
	opts.Fix, _ = cmd.Flags().GetBool("fix")
	opts.Volumes, _ = cmd.Flags().GetBool("volumes")

	return newOrchestrator(cfg).Run(name, repos, opts)
}
