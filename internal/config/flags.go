package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by every command.
const (
	FlagFile      = "file"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagNoColor   = "no-color"
	FlagQuiet     = "quiet"
)

// BindFlags registers the global flags on fs. Their values only take effect
// when set explicitly; the defaults shown in help come from setDefaults.
func BindFlags(fs *pflag.FlagSet) {
	defaults := &Config{}
	setDefaults(defaults)

	fs.StringP(FlagFile, "f", defaults.TaskFile, "Path to task file")
	fs.String(FlagLogLevel, defaults.LogLevel, "Log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, defaults.LogFormat, "Log format (text, json, logfmt)")
	fs.Bool(FlagNoColor, false, "Disable colored output")
	fs.BoolP(FlagQuiet, "q", false, "Suppress informational output")
}

// applyFlags copies explicitly set flags from fs into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet, sources map[string]ConfigSource) error {
	if fs == nil {
		return nil
	}

	if fs.Changed(FlagFile) {
		v, err := fs.GetString(FlagFile)
		if err != nil {
			return err
		}
		cfg.TaskFile = v
		sources["task_file"] = SourceFlag
	}
	if fs.Changed(FlagLogLevel) {
		v, err := fs.GetString(FlagLogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = v
		sources["log_level"] = SourceFlag
	}
	if fs.Changed(FlagLogFormat) {
		v, err := fs.GetString(FlagLogFormat)
		if err != nil {
			return err
		}
		cfg.LogFormat = v
		sources["log_format"] = SourceFlag
	}
	if fs.Changed(FlagNoColor) {
		v, err := fs.GetBool(FlagNoColor)
		if err != nil {
			return err
		}
		if v {
			cfg.Color = false
			sources["color"] = SourceFlag
		}
	}
	if fs.Changed(FlagQuiet) {
		v, err := fs.GetBool(FlagQuiet)
		if err != nil {
			return err
		}
		cfg.Quiet = v
	}
	return nil
}
