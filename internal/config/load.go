package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file
// 4. .env and environment variables
// 5. CLI flags
func Load(fs *pflag.FlagSet) (*Config, error) {
	cws, err := LoadWithSources(fs)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *pflag.FlagSet) (*ConfigWithSources, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return loadFrom(wd, fs)
}

func loadFrom(root string, fs *pflag.FlagSet) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{ProjectRoot: root},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := cws.loadConfigFile(path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(root); path != "" {
		if err := cws.loadConfigFile(path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Environment, seeded from .env
	dotenv, err := loadDotEnv(root)
	if err != nil {
		return nil, err
	}
	loadFromEnv(cfg, cws.Sources, envLookup(dotenv))

	// 5. Explicit CLI flags
	if err := applyFlags(cfg, fs, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// loadConfigFile decodes a TOML file over the current values. Only keys
// present in the file change, and each is attributed to source.
func (cws *ConfigWithSources) loadConfigFile(path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			cws.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Warnings = append(cws.Warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
	}
	cws.Files = append(cws.Files, path)
	return nil
}

var (
	exportFormats = []string{"markdown", "md", "yaml", "yml", "json"}
	logFormats    = []string{"text", "json", "logfmt"}
)

// finalizeConfig validates values and resolves paths against the project root.
func finalizeConfig(cfg *Config) error {
	cfg.ExportFormat = strings.ToLower(strings.TrimSpace(cfg.ExportFormat))
	if !slices.Contains(exportFormats, cfg.ExportFormat) {
		return fmt.Errorf("invalid export_format %q, must be one of: markdown, yaml, json", cfg.ExportFormat)
	}
	if _, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", cfg.LogFormat)
	}
	if strings.TrimSpace(cfg.TaskFile) == "" {
		return fmt.Errorf("task_file must not be empty")
	}

	cfg.TaskFile = resolvePath(cfg.ProjectRoot, cfg.TaskFile)
	cfg.ExportFile = resolvePath(cfg.ProjectRoot, cfg.ExportFile)
	cfg.Template = resolvePath(cfg.ProjectRoot, cfg.Template)
	return nil
}

// resolvePath expands p and makes it absolute relative to root.
func resolvePath(root, p string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
