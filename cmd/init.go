package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewhq/crew/pkg/workspace"
)

// NewInitCmd writes a starter configuration.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the crew configuration",
		Long:  `Creates ~/.crew/config.json (or the --config path) with the workspace location and your onboarding metadata.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				var err error
				path, err = workspace.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			cfg, err := workspace.LoadConfig(path)
			if err != nil {
				return err
			}
			if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
				cfg.WorkspacePath = ws
			}
			if name, _ := cmd.Flags().GetString("name"); name != "" {
				cfg.User.Name = name
			}
			if email, _ := cmd.Flags().GetString("email"); email != "" {
				cfg.User.Email = email
			}
			if team, _ := cmd.Flags().GetString("team"); team != "" {
				cfg.User.Team = team
			}

			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("workspace", "", "Workspace directory containing your repositories")
	cmd.Flags().String("name", "", "Your name")
	cmd.Flags().String("email", "", "Your email")
	cmd.Flags().String("team", "", "Your team")
	return cmd
}
