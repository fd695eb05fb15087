package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStopCmd gracefully terminates supervised processes.
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [repos...]",
		Short: "Gracefully stop supervised processes",
		Long: `Stops the processes crew started. Compose-managed repositories get a
compose stop; npm processes get SIGTERM with a SIGKILL escalation after a
grace window. With no repositories listed, everything is stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			stopped := newOrchestrator(cfg).Stop(args)
			fmt.Printf("Stopped %d process(es)\n", stopped)
			return nil
		},
	}
}

// NewKillCmd tears down supervised processes aggressively.
func NewKillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill [repos...]",
		Short: "Forcefully tear down supervised processes",
		Long: `Tears processes down harder than stop: compose-managed repositories get a
compose down, hybrid repositories get their detected services stopped and
removed, and npm processes are signaled directly. --force escalates to
SIGKILL and removes compose volumes and orphans.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			killed := newOrchestrator(cfg).Kill(args, force)
			fmt.Printf("Killed %d process(es)\n", killed)
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Use SIGKILL and remove volumes/orphans")
	return cmd
}
