// Package cmd implements the CLI command structure for taskflow.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nibzard/taskflow/internal/config"
	"github.com/nibzard/taskflow/internal/logging"
	"github.com/nibzard/taskflow/internal/output"
	"github.com/nibzard/taskflow/internal/task"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries the per-invocation state shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
	out    *output.Printer
}

// Run executes the taskflow CLI with args (without the program name).
// Business failures such as an unknown task id are printed and yield a nil
// error; only usage and internal errors are returned.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr, now: time.Now}
	root := newRootCmd(a)
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - Smart CLI Todo & Project Manager",
		Long: `TaskFlow - Smart CLI Todo & Project Manager

TaskFlow keeps a list of tasks in a JSON file next to your project.

Statuses: todo, in_progress, done, blocked
Priorities: high, medium, low`,
		Example: `  taskflow add "Fix login bug" --priority high --tags bug,urgent
  taskflow list                           # List all tasks
  taskflow list --status todo             # Filter by status
  taskflow done 3                         # Mark task #3 as done
  taskflow start 5                        # Mark task #5 in progress
  taskflow delete 7                       # Delete task #7
  taskflow export                         # Export to TASKS.md`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetVersionTemplate("taskflow version {{.Version}}\n")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newDoneCmd(a),
		newStartCmd(a),
		newBlockCmd(a),
		newReopenCmd(a),
		newDeleteCmd(a),
		newEditCmd(a),
		newExportCmd(a),
		newStatsCmd(a),
		newBoardCmd(a),
		newDoctorCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger and printer.
func (a *app) setup(cmd *cobra.Command) error {
	cws, err := config.LoadWithSources(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cws = cws
	a.cfg = cws.Config
	a.logger = logging.NewFromConfig(a.stderr, a.cfg.LogLevel, a.cfg.LogFormat, a.cfg.LogTimestamps, a.cfg.LogCaller)
	a.out = output.New(a.stdout,
		output.WithColor(a.cfg.Color),
		output.WithQuiet(a.cfg.Quiet),
		output.WithClock(a.now),
	)
	for _, w := range cws.Warnings {
		a.logger.Warn("Config", "warning", w)
	}
	a.logger.Debug("Loaded config", "task_file", a.cfg.TaskFile, "files", strings.Join(cws.Files, ","))
	return nil
}

// openStore loads the configured task file.
func (a *app) openStore() *task.Store {
	return task.Open(a.cfg.TaskFile, task.WithLogger(a.logger), task.WithClock(a.now))
}

// report prints business failures and swallows them. Any other error is
// returned unchanged.
func (a *app) report(id int, err error) error {
	var pe *task.PersistError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, task.ErrNotFound):
		a.out.Fail("Task %d not found", id)
	case errors.As(err, &pe):
		a.out.Fail("Error saving tasks: %v", pe.Err)
	case errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrInvalidStatus):
		a.out.Fail("%v", err)
	default:
		return err
	}
	return nil
}

// displayPath shortens p relative to the project root when it lives below it.
func (a *app) displayPath(p string) string {
	rel, err := filepath.Rel(a.cfg.ProjectRoot, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}
