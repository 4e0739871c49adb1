package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskflow/internal/ui"
)

func newBoardCmd(a *app) *cobra.Command {
	var refresh time.Duration
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show an interactive task board",
		Long: `Board shows tasks grouped by status and reloads the task file periodically.

Keys: 1-4 filter by todo, in progress, blocked, done; 0 clears the filter;
r reloads; h shows help; q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ui.RunBoard(cmd.Context(), a.cfg.TaskFile,
				ui.WithRefresh(refresh),
				ui.WithColor(a.cfg.Color),
				ui.WithLogger(a.logger),
				ui.WithClock(a.now),
				ui.WithOutput(a.stdout),
			)
			if errors.Is(err, ui.ErrNotTTY) {
				a.out.Fail("The board needs an interactive terminal; use taskflow list instead")
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", ui.DefaultRefresh, "Auto-refresh interval")
	return cmd
}
