// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and validates eagerctl settings. Values come from a
// TOML file under the data directory, overridden by EAGERAPI_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. EAGERAPI_PATHS_DEFAULT.
const EnvPrefix = "EAGERAPI"

// Config holds all settings.
type Config struct {
	DataDir     string        `toml:"datadir" mapstructure:"datadir"`
	Paths       PathsConfig   `toml:"paths" mapstructure:"paths"`
	EdenAPI     EdenAPIConfig `toml:"edenapi" mapstructure:"edenapi"`
	LogLevel    string        `toml:"loglevel" mapstructure:"loglevel"`
	LogFile     string        `toml:"logfile" mapstructure:"logfile"`
	Compression string        `toml:"compression" mapstructure:"compression"`
}

// PathsConfig mirrors the [paths] section of a repository config.
type PathsConfig struct {
	Default string `toml:"default" mapstructure:"default"`
}

// EdenAPIConfig mirrors the [edenapi] section of a repository config.
type EdenAPIConfig struct {
	URL string `toml:"url" mapstructure:"url"`
}

// DefaultDataDir returns ~/.eagerapi, or .eagerapi when the home directory
// is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eagerapi"
	}
	return filepath.Join(home, ".eagerapi")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		LogLevel:    "info",
		Compression: "zstd",
	}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

// LoadConfig reads path on top of the defaults and applies environment
// overrides. Keys the file does not set keep their defaults.
func LoadConfig(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, err
	}

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return decode(v)
}

// FromEnv returns the defaults with environment overrides applied, for
// running without a config file.
func FromEnv() (Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("datadir", def.DataDir)
	v.SetDefault("paths.default", def.Paths.Default)
	v.SetDefault("edenapi.url", def.EdenAPI.URL)
	v.SetDefault("loglevel", def.LogLevel)
	v.SetDefault("logfile", def.LogFile)
	v.SetDefault("compression", def.Compression)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as TOML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString("# eagerapi configuration\n\n"); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return f.Close()
}
