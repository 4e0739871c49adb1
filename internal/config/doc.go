// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskflow/taskflow.toml or OS-specific config directory)
// 3. Project config file (taskflow.toml or .taskflow.toml in the working directory)
// 4. Environment variables (TASKFLOW_*, NO_COLOR), after loading ./.env
// 5. CLI flags that were explicitly set
//
// Each level overrides the previous one, so CLI flags take precedence.
// Values from .env fill in variables that are unset or empty in the
// environment. The process environment itself is never modified.
//
// User-level config locations:
// - ~/.taskflow/taskflow.toml (preferred)
// - Windows: %APPDATA%\taskflow\taskflow.toml
// - macOS: ~/Library/Application Support/taskflow/taskflow.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskflow/taskflow.toml or ~/.config/taskflow/taskflow.toml
package config
