package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskflow/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var example bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Config prints every setting together with where its value came from:
default, user file, project file, environment or flag.

Use --example to print a commented config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := a.stdout
			if example {
				fmt.Fprint(w, config.ExampleConfig())
				return nil
			}

			fmt.Fprintln(w, "Configuration")
			fmt.Fprintln(w, "=============")
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Project root: %s\n", a.cfg.ProjectRoot)
			if len(a.cws.Files) == 0 {
				fmt.Fprintf(w, "Config files: none (create %s or taskflow.toml)\n", config.UserConfigPath())
			} else {
				fmt.Fprintln(w, "Config files:")
				for _, f := range a.cws.Files {
					fmt.Fprintf(w, "  %s\n", f)
				}
			}
			fmt.Fprintln(w)

			for _, field := range config.Fields() {
				value := a.cfg.Value(field)
				if value == "" {
					value = `""`
				}
				fmt.Fprintf(w, "  %-15s = %-40s (%s)\n", field, value, a.cws.Sources[field])
			}
			if len(a.cws.Warnings) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Warnings:")
				for _, warn := range a.cws.Warnings {
					fmt.Fprintf(w, "  %s\n", warn)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&example, "example", false, "Print an example config file")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "taskflow version %s\n", Version)
			return nil
		},
	}
}
