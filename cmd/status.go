package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// NewStatusCmd reports the active supervised processes.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show supervised processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			status := newOrchestrator(cfg).Status()
			if len(status) == 0 {
				fmt.Println("No supervised processes.")
				return nil
			}

			rows := [][]string{{"REPO", "COMMAND", "PID", "UPTIME", "MODE", "LOG"}}
			for _, info := range status {
				rows = append(rows, []string{
					info.Repo,
					info.Command,
					fmt.Sprintf("%d", info.PID),
					info.Uptime.String(),
					info.Mode,
					info.LogPath,
				})
			}
			printTable(rows)
			return nil
		},
	}
}

func printTable(rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for r, row := range rows {
		line := ""
		for i, cell := range row {
			padded := fmt.Sprintf("%-*s", widths[i], cell)
			if r == 0 {
				padded = headerStyle.Render(padded)
			}
			line += cellStyle.Render(padded)
		}
		fmt.Println(line)
	}
}
