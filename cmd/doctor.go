package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskflow/internal/report"
)

// errChecksFailed is returned by doctor when at least one check fails.
var errChecksFailed = errors.New("doctor checks failed")

func newDoctorCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and task file health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.doctor(a.stdout, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "List every task checked")
	return cmd
}

func (a *app) doctor(w io.Writer, verbose bool) error {
	fmt.Fprintln(w, "TaskFlow Doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintln(w, "Config:")
	if len(a.cws.Files) == 0 {
		fmt.Fprintln(w, "  [OK] Using defaults (no config file)")
	}
	for _, f := range a.cws.Files {
		fmt.Fprintf(w, "  [OK] %s\n", f)
	}
	for _, warn := range a.cws.Warnings {
		fmt.Fprintf(w, "  [!] %s\n", warn)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Task file: %s\n", a.cfg.TaskFile)
	info, err := os.Stat(a.cfg.TaskFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(w, "  [!] Not found (run: taskflow init)")
	case err != nil:
		fmt.Fprintf(w, "  [X] Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Fprintln(w, "  [X] Error: path is a directory")
		allOK = false
	default:
		s := a.openStore()
		if loadErr := s.LoadErr(); loadErr != nil {
			fmt.Fprintf(w, "  [X] Load error: %v\n", loadErr)
			allOK = false
			break
		}
		result := s.Validate()
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "  [!] %s\n", warn)
		}
		if result.Valid {
			fmt.Fprintf(w, "  [OK] Valid (%d tasks)\n", s.Len())
		} else {
			fmt.Fprintln(w, "  [X] Validation failed:")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "     - %v\n", e)
			}
			allOK = false
		}
		if verbose {
			for _, t := range s.Tasks() {
				fmt.Fprintf(w, "    - [%s] %d: %s\n", t.Status, t.ID, t.Title)
			}
		}
	}
	fmt.Fprintln(w)

	if a.cfg.Template != "" {
		fmt.Fprintf(w, "Template: %s\n", a.cfg.Template)
		if _, err := report.NewRenderer(a.cfg.Template).Markdown(nil, a.now()); err != nil {
			fmt.Fprintf(w, "  [X] %v\n", err)
			allOK = false
		} else {
			fmt.Fprintln(w, "  [OK] Renders")
		}
		fmt.Fprintln(w)
	}

	dir := filepath.Dir(a.cfg.ExportFile)
	fmt.Fprintf(w, "Export directory: %s\n", dir)
	if info, err := os.Stat(dir); err != nil {
		fmt.Fprintf(w, "  [X] Error: %v\n", err)
		allOK = false
	} else if !info.IsDir() {
		fmt.Fprintln(w, "  [X] Error: path is not a directory")
		allOK = false
	} else {
		fmt.Fprintln(w, "  [OK] OK")
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "[OK] All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "[!] Some checks failed. TaskFlow may not work correctly.")
	return errChecksFailed
}
