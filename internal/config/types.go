package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Default values.
const (
	DefaultTaskFile     = ".taskflow.json"
	DefaultExportFile   = "TASKS.md"
	DefaultExportFormat = "markdown"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
)

// Config holds the full configuration for taskflow.
type Config struct {
	// Paths
	TaskFile   string `toml:"task_file"`
	ExportFile string `toml:"export_file"`
	// Template replaces the bundled Markdown report template.
	Template string `toml:"template"`

	ExportFormat string `toml:"export_format"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Output
	Color bool `toml:"color"`
	Quiet bool `toml:"-"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Warnings holds non-fatal problems such as unknown keys.
	Warnings []string
}

// configFields returns the configurable field names in display order.
func configFields() []string {
	return []string{
		"task_file",
		"export_file",
		"export_format",
		"template",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"color",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the string form of a field by its config key.
func (c *Config) Value(field string) string {
	switch field {
	case "task_file":
		return c.TaskFile
	case "export_file":
		return c.ExportFile
	case "export_format":
		return c.ExportFormat
	case "template":
		return c.Template
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return formatBool(c.LogTimestamps)
	case "log_caller":
		return formatBool(c.LogCaller)
	case "color":
		return formatBool(c.Color)
	}
	return ""
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TaskFile = DefaultTaskFile
	cfg.ExportFile = DefaultExportFile
	cfg.ExportFormat = DefaultExportFormat
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Color = true
}
