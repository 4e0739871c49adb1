package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvTaskFile      = "TASKFLOW_FILE"
	EnvExportFile    = "TASKFLOW_EXPORT_FILE"
	EnvExportFormat  = "TASKFLOW_EXPORT_FORMAT"
	EnvTemplate      = "TASKFLOW_TEMPLATE"
	EnvLogLevel      = "TASKFLOW_LOG_LEVEL"
	EnvLogFormat     = "TASKFLOW_LOG_FORMAT"
	EnvLogTimestamps = "TASKFLOW_LOG_TIMESTAMPS"
	EnvLogCaller     = "TASKFLOW_LOG_CALLER"
	EnvColor         = "TASKFLOW_COLOR"
	EnvNoColor       = "NO_COLOR"
)

// loadDotEnv reads dir/.env. A missing file yields a nil map. The process
// environment is left untouched.
func loadDotEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return vars, nil
}

// envLookup returns a getenv that prefers non-empty process variables and
// falls back to values from .env.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

// loadFromEnv overrides config from environment variables and records the
// source of each value it sets.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource, getenv func(string) string) {
	setEnv := func(field string) {
		sources[field] = SourceEnv
	}

	if v := getenv(EnvTaskFile); v != "" {
		cfg.TaskFile = v
		setEnv("task_file")
	}
	if v := getenv(EnvExportFile); v != "" {
		cfg.ExportFile = v
		setEnv("export_file")
	}
	if v := getenv(EnvExportFormat); v != "" {
		cfg.ExportFormat = v
		setEnv("export_format")
	}
	if v := getenv(EnvTemplate); v != "" {
		cfg.Template = v
		setEnv("template")
	}

	// Logging configuration
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := getenv(EnvLogTimestamps); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := getenv(EnvLogCaller); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}

	if v := getenv(EnvColor); v != "" {
		cfg.Color = boolFromString(v)
		setEnv("color")
	}
	// https://no-color.org: any non-empty value disables color.
	if v := getenv(EnvNoColor); v != "" {
		cfg.Color = false
		setEnv("color")
	}
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
