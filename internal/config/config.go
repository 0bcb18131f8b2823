// Package config loads runtime settings for tada.
//
// Sources, later wins:
//
//  1. Built-in defaults (see Defaults).
//  2. TOML file: --config PATH, else $XDG_CONFIG_HOME/tada/config.toml,
//     else ~/.config/tada/config.toml. A missing default file is fine.
//  3. Environment: TADA_DATA_DIR, TADA_BACKEND, TADA_EXPORT_DIR,
//     TADA_LOG_LEVEL, TADA_LOG_FORMAT, TADA_THEME.
//  4. Command-line flags, applied by the cli package.
//
// Example file:
//
//	data_dir   = "~/.tada"
//	backend    = "sqlite"
//	export_dir = "~/Downloads"
//	log_level  = "info"
//	theme      = "neon"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Config struct {
	DataDir   string `toml:"data_dir"`
	Backend   string `toml:"backend"`
	ExportDir string `toml:"export_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	Theme     string `toml:"theme"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		DataDir:   "~/.tada",
		Backend:   BackendSQLite,
		ExportDir: ".",
		LogLevel:  "warn",
		LogFormat: "text",
		Theme:     "classic",
	}
}

// Load applies defaults, the config file and the environment.
// path overrides the default file location; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = defaultFile()
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	loadFromEnv(&cfg)
	return &cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func defaultFile() string {
	if x := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); x != "" {
		return filepath.Join(x, "tada", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tada", "config.toml")
}

func loadFromEnv(cfg *Config) {
	envs := []struct {
		key string
		dst *string
	}{
		{"TADA_DATA_DIR", &cfg.DataDir},
		{"TADA_BACKEND", &cfg.Backend},
		{"TADA_EXPORT_DIR", &cfg.ExportDir},
		{"TADA_LOG_LEVEL", &cfg.LogLevel},
		{"TADA_LOG_FORMAT", &cfg.LogFormat},
		{"TADA_THEME", &cfg.Theme},
	}
	for _, e := range envs {
		if v := strings.TrimSpace(os.Getenv(e.key)); v != "" {
			*e.dst = v
		}
	}
}

// Validate rejects values no component understands.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, file or memory)", c.Backend)
	}
	switch strings.ToLower(c.Theme) {
	case "", "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", c.Theme)
	}
	if c.Backend != BackendMemory && strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir is empty")
	}
	return nil
}

// ResolvedDataDir expands a leading ~ in DataDir.
func (c *Config) ResolvedDataDir() string { return ExpandPath(c.DataDir) }

// ResolvedExportDir expands a leading ~ in ExportDir.
func (c *Config) ResolvedExportDir() string { return ExpandPath(c.ExportDir) }

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
