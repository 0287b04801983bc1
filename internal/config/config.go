// Package config handles pdb configuration.
//
// Settings are layered, later sources winning: built-in defaults, the global
// YAML file, a .env file, PDB_* environment variables, and finally flags
// applied by the caller.
package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PDB_"

// Config holds the database location and logging settings.
type Config struct {
	Root      string `yaml:"root,omitempty"       env:"ROOT"`       // Directory holding the schema document and data dir
	MetaFile  string `yaml:"meta_file,omitempty"  env:"META_FILE"`  // Schema document name, relative to Root
	DataDir   string `yaml:"data_dir,omitempty"   env:"DATA_DIR"`   // Row document directory, relative to Root
	LogLevel  string `yaml:"log_level,omitempty"  env:"LOG_LEVEL"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format,omitempty" env:"LOG_FORMAT"` // text, json
	Timing    bool   `yaml:"timing,omitempty"     env:"TIMING"`     // Log command durations at info level
}

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted log_format values.
var ValidLogFormats = []string{"text", "json"}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Root:      ".",
		MetaFile:  "db_meta.json",
		DataDir:   "data",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// LoadOptions controls where Load looks for its sources.
type LoadOptions struct {
	GlobalPath string // Global YAML file; empty uses GlobalConfigPath()
	EnvFile    string // Dotenv file; empty uses ".env"
}

// Load builds the configuration from defaults, the global file, the dotenv
// file and the environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	globalPath := opts.GlobalPath
	if globalPath == "" {
		globalPath = GlobalConfigPath()
	}
	if err := applyGlobalConfig(cfg, globalPath); err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		// Existing environment variables take precedence over the file
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	cfg.Root = ExpandPath(cfg.Root)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// EffectiveLogLevel returns the level the logger should run at. Timing
// records are logged at info, so Timing lowers warn and error to info.
func (c *Config) EffectiveLogLevel() string {
	if c.Timing && (c.LogLevel == "warn" || c.LogLevel == "error") {
		return "info"
	}
	return c.LogLevel
}

// Validate checks that every setting has an accepted value.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if c.MetaFile == "" {
		return fmt.Errorf("meta_file must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if !slices.Contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s (valid: %v)", c.LogLevel, ValidLogLevels)
	}
	if !slices.Contains(ValidLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format: %s (valid: %v)", c.LogFormat, ValidLogFormats)
	}
	return nil
}
