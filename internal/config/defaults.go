package config

// Migration service defaults.
const (
	DefaultMigrationURL   = "http://localhost:3001"
	DefaultTimeoutSeconds = 120
)

// DefaultShannonPrefix is the bech32 prefix of Shannon addresses.
const DefaultShannonPrefix = "pokt"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.poktwallet",
		Store: StoreConfig{
			Backend: "file",
		},
		Networks: NetworksConfig{
			Morse: MorseNetworkConfig{AddressPrefix: ""},
			Shannon: ShannonNetworkConfig{
				AddressPrefix: DefaultShannonPrefix,
				MainnetPrefix: DefaultShannonPrefix,
				TestnetPrefix: DefaultShannonPrefix,
			},
		},
		Migration: MigrationConfig{
			BaseURL:        DefaultMigrationURL,
			HealthPath:     "/health",
			MigratePath:    "/migrate",
			TimeoutSeconds: DefaultTimeoutSeconds,
			RatePerSecond:  2,
			Burst:          2,
		},
		Security: SecurityConfig{
			LegacyRecovery: false,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level:  "error",
			File:   "~/.poktwallet/poktwallet.log",
			Format: "text",
		},
	}
}
