// cmd/stampver/config.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config describes the solution layout conventions the locator follows.
// Everything has a built-in default; a config file only matters for
// projects whose metadata convention differs (another extension, other
// candidate filenames, a renamed properties directory).
type Config struct {
	CandidateNames []string `toml:"candidate_names"`
	Extension      *string  `toml:"extension"`
	PropertiesDir  *string  `toml:"properties_dir"`
	SrcDir         *string  `toml:"src_dir"`
}

var defaultConfig = Config{
	CandidateNames: []string{"GlobalAssemblyInfo", "AssemblyInfo", "AssemblyCommonInfo", "AssemblyInfo.Common"},
	Extension:      func(s string) *string { return &s }("cs"),
	PropertiesDir:  func(s string) *string { return &s }("Properties"),
	SrcDir:         func(s string) *string { return &s }("src"),
}

// loadConfig reads the layout configuration from the custom path if
// given, else from ~/.config/stampver/config.toml. A missing default
// file is fine; a missing custom file is an error.
func loadConfig(customConfigPath string) (Config, error) {
	cfg := defaultConfig
	isCustomPath := customConfigPath != ""

	configFile := ""
	if isCustomPath {
		abs, err := filepath.Abs(customConfigPath)
		if err != nil {
			return defaultConfig, fmt.Errorf("invalid custom config path '%s': %w", customConfigPath, err)
		}
		configFile = abs
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("Could not determine user home directory. Using default settings only.", "error", err)
			return cfg, nil
		}
		configFile = filepath.Join(homeDir, ".config", "stampver", "config.toml")
	}

	slog.Debug("Reading configuration file", "path", configFile)
	content, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if isCustomPath {
				return defaultConfig, fmt.Errorf("specified configuration file '%s' not found", configFile)
			}
			slog.Debug("No default config file found, using default settings.", "path", configFile)
			return cfg, nil
		}
		return defaultConfig, fmt.Errorf("error reading config file '%s': %w", configFile, err)
	}

	if len(content) == 0 {
		slog.Info("Configuration file is empty, using default settings.", "path", configFile)
		return cfg, nil
	}

	// Decode into a zero Config so the decoder cannot write through
	// pointers or slice backing arrays shared with defaultConfig; the
	// nil/empty backfill below restores defaults for unset keys.
	var loadedCfg Config
	if meta, err := toml.Decode(string(content), &loadedCfg); err != nil {
		return defaultConfig, fmt.Errorf("error decoding TOML from '%s': %w", configFile, err)
	} else if len(meta.Undecoded()) > 0 {
		slog.Warn("Unrecognized keys found in config file.", "path", configFile, "keys", meta.Undecoded())
	}
	cfg = loadedCfg

	// Ensure pointer fields have defaults if nil after decoding
	if cfg.Extension == nil {
		cfg.Extension = defaultConfig.Extension
	}
	if cfg.PropertiesDir == nil {
		cfg.PropertiesDir = defaultConfig.PropertiesDir
	}
	if cfg.SrcDir == nil {
		cfg.SrcDir = defaultConfig.SrcDir
	}
	if len(cfg.CandidateNames) == 0 {
		cfg.CandidateNames = defaultConfig.CandidateNames
	}

	slog.Debug("Configuration loaded.",
		"source", configFile,
		"candidate_names", cfg.CandidateNames,
		"extension", *cfg.Extension,
		"properties_dir", *cfg.PropertiesDir,
		"src_dir", *cfg.SrcDir,
	)
	return cfg, nil
}

// ciBuildCounter reads the CI host's build counter from the
// environment, optionally loading a dotenv file first. Returns 0 when
// no usable counter is present, which downstream means "keep the
// extracted revision".
func ciBuildCounter(envFile string) int {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			slog.Warn("Could not load env file.", "path", envFile, "error", err)
		}
	}
	raw := os.Getenv("BUILD_NUMBER")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("Ignoring malformed or non-positive BUILD_NUMBER.", "value", raw)
		return 0
	}
	return n
}
