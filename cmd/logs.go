package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// NewLogsCmd replays or follows a repository's most recent log file.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <repo>",
		Short: "Show a repository's latest command log",
		Long: `Prints the most recent log crew captured for the repository, with stderr
lines highlighted. With -f the log is followed until interrupted; Ctrl-C
stops the tail cleanly without touching the running process.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			follow, _ := cmd.Flags().GetBool("follow")

			ctx := cmd.Context()
			if follow {
				var stop context.CancelFunc
				ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
				defer stop()
			}
			return newOrchestrator(cfg).Logs(ctx, args[0], follow, os.Stdout)
		},
	}
	cmd.Flags().BoolP("follow", "f", false, "Follow the log until interrupted")
	return cmd
}
