package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nibzard/taskflow/internal/report"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize TaskFlow in current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.openStore()
			if s.Exists() {
				a.out.OK("TaskFlow already initialized in this directory")
				return nil
			}
			if err := s.Save(); err != nil {
				return a.report(0, err)
			}
			a.out.OK("TaskFlow initialized!")
			a.out.Printf("   Task file: %s\n", a.displayPath(s.Path()))
			a.out.Tip("Quick start:", `taskflow add "My first task"`, "taskflow list")
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var outPath, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to Markdown",
		Long: `Export writes a report of all tasks grouped by status.

The default format is Markdown, rendered from the bundled template or from the
template set in the config file. YAML and JSON snapshots are also available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.ExportFormat
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				a.out.Fail("Export failed: %v", err)
				return nil
			}
			path, shown := a.cfg.ExportFile, a.displayPath(a.cfg.ExportFile)
			if cmd.Flags().Changed("output") {
				path, shown = outPath, outPath
			}

			s := a.openStore()
			r := report.NewRenderer(a.cfg.Template)
			if err := r.Export(path, f, s.Tasks(), s.Now()); err != nil {
				a.logger.Error("Error exporting", "path", path, "err", err)
				a.out.Fail("Export failed: %v", err)
				return nil
			}
			a.out.OK("Tasks exported to: %s", shown)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", report.DefaultOutput, "Output file")
	cmd.Flags().StringVar(&format, "format", string(report.FormatMarkdown), "Export format (markdown, yaml, json)")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.openStore()
			if s.Len() == 0 {
				a.out.Info("No tasks yet")
				return nil
			}
			a.out.Stats(s.Stats())
			return nil
		},
	}
}
