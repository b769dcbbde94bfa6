package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every poktwallet environment variable.
const EnvPrefix = "POKTWALLET"

// Environment variable names.
const (
	EnvHome    = "POKTWALLET_HOME"
	EnvNoColor = "NO_COLOR"
)

// Environment holds the overrides read from POKTWALLET_* variables.
// Unset variables leave the loaded configuration untouched. Names come from
// the field names; an envconfig tag would make unprefixed HOME a fallback.
type Environment struct {
	Home          string `split_words:"true"`
	MigrationURL  string `split_words:"true"`
	StoreBackend  string `split_words:"true"`
	StorePassword string `split_words:"true"`
	OutputFormat  string `split_words:"true"`
	Verbose       *bool
	LogLevel      string `split_words:"true"`
}

// ReadEnvironment parses the POKTWALLET_* variables.
func ReadEnvironment() (*Environment, error) {
	var env Environment
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &env, nil
}

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) error {
	env, err := ReadEnvironment()
	if err != nil {
		return err
	}
	env.Apply(cfg)
	return nil
}

// Apply copies the set overrides onto cfg.
func (e *Environment) Apply(cfg *Config) {
	if e.Home != "" {
		cfg.Home = e.Home
	}
	if e.MigrationURL != "" {
		cfg.Migration.BaseURL = strings.TrimRight(strings.TrimSpace(e.MigrationURL), "/")
	}
	if e.StoreBackend != "" {
		cfg.Store.Backend = strings.ToLower(e.StoreBackend)
	}
	if e.StorePassword != "" {
		cfg.Store.Passphrase = e.StorePassword
	}
	if e.OutputFormat != "" {
		cfg.Output.DefaultFormat = strings.ToLower(e.OutputFormat)
	}
	if e.Verbose != nil {
		cfg.Output.Verbose = *e.Verbose
	}
	if e.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(e.LogLevel)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}
