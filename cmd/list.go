package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewhq/crew/pkg/workspace"
)

// NewListCmd lists the repositories in the workspace.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspace repositories",
		Long:  `Lists the repositories in the configured workspace with the description and version from each package.json, when present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			repos, err := workspace.ListRepos(cfg.WorkspacePath)
			if err != nil {
				return err
			}

			for _, repo := range repos {
				line := repo.Name
				if m, err := workspace.ReadManifest(repo.Path); err == nil {
					if m.Version != "" {
						line += " v" + m.Version
					}
					if m.Description != "" {
						line += " - " + m.Description
					}
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
