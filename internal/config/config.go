// SPDX-License-Identifier: MPL-2.0

// Package config loads skillhub configuration: a CUE config file under the
// platform config directory, layered over defaults, with environment
// variable overrides.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "skillhub"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variable overrides
	// (SKILLHUB_REGISTRY_DIR, SKILLHUB_DESTINATION_DIR, SKILLHUB_REMOTE_URL).
	EnvPrefix = "SKILLHUB"
)

//go:embed config_schema.cue
var configSchema string

type (
	// Config is the loaded skillhub configuration.
	Config struct {
		// RegistryDir is the filesystem root of the local package registry.
		RegistryDir string `mapstructure:"registry_dir"`
		// DestinationDir is the default install destination.
		DestinationDir string `mapstructure:"destination_dir"`
		// RemoteURL is the base URL of a read-only remote registry.
		RemoteURL string `mapstructure:"remote_url"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose"`
	}
)

// ConfigDir returns the skillhub configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfig returns the built-in defaults. The registry and default
// destination live under ~/.skillhub.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &Config{
		RegistryDir:    filepath.Join(home, "."+AppName, "registry"),
		DestinationDir: filepath.Join(home, "."+AppName, "skills"),
	}, nil
}

// LoadOptions controls config loading.
type LoadOptions struct {
	// ConfigFilePath loads this file exclusively instead of searching the
	// config directory.
	ConfigFilePath string
}

// Load reads the configuration: defaults, then the CUE config file (if
// present), then SKILLHUB_* environment overrides.
func Load(opts LoadOptions) (*Config, error) {
	defaults, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("registry_dir", defaults.RegistryDir)
	v.SetDefault("destination_dir", defaults.DestinationDir)
	v.SetDefault("remote_url", "")
	v.SetDefault("ui.verbose", false)

	path := opts.ConfigFilePath
	if path == "" {
		cfgDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		candidate := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(candidate) {
			path = candidate
		}
	} else if !fileExists(path) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{"registry_dir", "destination_dir", "remote_url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// loadCUEIntoViper validates a CUE config file against the embedded schema
// and merges the decoded values into viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("invalid CUE syntax: %w", userValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	var values map[string]any
	if err := unified.Decode(&values); err != nil {
		return fmt.Errorf("failed to decode config values: %w", err)
	}

	return v.MergeConfigMap(values)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
