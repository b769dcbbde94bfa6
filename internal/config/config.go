// Package config provides configuration management for poktwallet.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Home      string          `yaml:"home" json:"home"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Networks  NetworksConfig  `yaml:"networks" json:"networks"`
	Migration MigrationConfig `yaml:"migration" json:"migration"`
	Security  SecurityConfig  `yaml:"security" json:"security"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path,omitempty"`
	Encrypt bool   `yaml:"encrypt" json:"encrypt"`

	// Passphrase is only ever read from the environment.
	Passphrase string `yaml:"-" json:"-"`
}

// NetworksConfig holds per-model address settings.
type NetworksConfig struct {
	Morse   MorseNetworkConfig   `yaml:"morse" json:"morse"`
	Shannon ShannonNetworkConfig `yaml:"shannon" json:"shannon"`
}

// MorseNetworkConfig defines Morse address settings. Morse addresses are
// bare hex, so the prefix must stay empty.
type MorseNetworkConfig struct {
	AddressPrefix string `yaml:"address_prefix" json:"address_prefix"`
}

// ShannonNetworkConfig defines Shannon bech32 prefixes.
type ShannonNetworkConfig struct {
	AddressPrefix string `yaml:"address_prefix" json:"address_prefix"`
	MainnetPrefix string `yaml:"mainnet_prefix" json:"mainnet_prefix"`
	TestnetPrefix string `yaml:"testnet_prefix" json:"testnet_prefix"`
}

// MigrationConfig defines the remote migration service.
type MigrationConfig struct {
	BaseURL        string  `yaml:"base_url" json:"base_url"`
	HealthPath     string  `yaml:"health_path" json:"health_path"`
	MigratePath    string  `yaml:"migrate_path" json:"migrate_path"`
	TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second" json:"rate_per_second"`
	Burst          int     `yaml:"burst" json:"burst"`
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	// LegacyRecovery enables brute-forcing containers with common passphrases.
	LegacyRecovery bool `yaml:"legacy_recovery" json:"legacy_recovery"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
	Color         string `yaml:"color" json:"color"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, walleterr.Because(walleterr.ErrConfigNotFound, err, "configuration file not found: %s", path)
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, walleterr.Because(walleterr.ErrConfigInvalid, err, "parsing %s", path)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	invalid := func(key, value string) error {
		return walleterr.WithDetails(walleterr.ErrConfigInvalid, map[string]string{"key": key, "value": value})
	}

	switch c.Store.Backend {
	case "file", "sqlite", "memory":
	default:
		return invalid("store.backend", c.Store.Backend)
	}
	switch c.Output.DefaultFormat {
	case "auto", "text", "json":
	default:
		return invalid("output.default_format", c.Output.DefaultFormat)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return invalid("output.color", c.Output.Color)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format", c.Logging.Format)
	}
	// An empty prefix is what selects Morse derivation.
	if c.Networks.Morse.AddressPrefix != "" {
		return invalid("networks.morse.address_prefix", c.Networks.Morse.AddressPrefix)
	}
	if c.Networks.Shannon.AddressPrefix == "" {
		return invalid("networks.shannon.address_prefix", "")
	}
	if !strings.HasPrefix(c.Migration.BaseURL, "http://") && !strings.HasPrefix(c.Migration.BaseURL, "https://") {
		return invalid("migration.base_url", c.Migration.BaseURL)
	}
	if c.Migration.TimeoutSeconds <= 0 {
		return invalid("migration.timeout_seconds", fmt.Sprint(c.Migration.TimeoutSeconds))
	}
	return nil
}

// StorePath returns the configured store location with "~/" expanded.
func (c *Config) StorePath() string {
	return ExpandHome(c.Store.Path)
}

// DefaultHome returns the default poktwallet home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".poktwallet"
	}
	return filepath.Join(home, ".poktwallet")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
