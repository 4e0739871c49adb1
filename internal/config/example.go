package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# TaskFlow configuration file
# Values can be overridden by environment variables (TASKFLOW_*) or CLI flags.

# Task file (relative to the working directory)
task_file = ".taskflow.json"

# Default export destination and format (markdown, yaml, json)
export_file = "TASKS.md"
export_format = "markdown"

# Custom Markdown report template (text/template syntax)
# template = "~/.taskflow/report.md.tmpl"

# Logging: debug, info, warn, error
log_level = "warn"
# text, json or logfmt
log_format = "text"
log_timestamps = false
log_caller = false

# Colored terminal output (NO_COLOR also disables it)
color = true
`
}
