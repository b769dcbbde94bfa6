package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/poktwallet/internal/config"
	"github.com/mrz1836/poktwallet/internal/output"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify poktwallet configuration settings.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.poktwallet/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration after environment and flag overrides.

Example:
  poktwallet config show
  poktwallet config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by its dot-separated path.

Examples:
  poktwallet config get migration.base_url
  poktwallet config get networks.shannon.address_prefix`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by its dot-separated path and save the file.

Examples:
  poktwallet config set migration.base_url http://10.0.0.5:3001
  poktwallet config set store.backend sqlite
  poktwallet config set security.legacy_recovery true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configGetCmd, configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return walleterr.WithSuggestion(
			walleterr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaults := config.Defaults()
	defaults.Home = cfg.Home
	if err := config.Save(defaults, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - migration.base_url: Migration service endpoint")
	outln(w, "  - store.backend: Wallet store (file/sqlite/memory)")
	outln(w, "  - networks.shannon.address_prefix: Shannon bech32 prefix")
	outln(w, "  - logging.level: Log level (off/error/debug)")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return output.WriteJSON(w, cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	out(w, "%s", data)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	tree, err := configTree(cfg)
	if err != nil {
		return err
	}

	value, err := lookupPath(tree, args[0])
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case map[string]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		out(cmd.OutOrStdout(), "%s", data)
	default:
		outln(cmd.OutOrStdout(), fmt.Sprint(v))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, raw := args[0], args[1]
	configPath := config.Path(cfg.Home)

	current, err := config.Load(configPath)
	if err != nil {
		if !walleterr.Is(err, walleterr.ErrConfigNotFound) {
			return err
		}
		current = config.Defaults()
		current.Home = cfg.Home
	}

	tree, err := configTree(current)
	if err != nil {
		return err
	}
	if err := assignPath(tree, path, raw); err != nil {
		return err
	}

	data, err := yaml.Marshal(tree)
	if err != nil {
		return err
	}
	updated := config.Defaults()
	if err := yaml.Unmarshal(data, updated); err != nil {
		return walleterr.Because(walleterr.ErrConfigInvalid, err, "invalid value for %s", path)
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	if err := config.Save(updated, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	out(cmd.OutOrStdout(), "Set %s = %s\n", path, raw)
	return nil
}

// configTree converts c to nested maps keyed by YAML names.
func configTree(c *config.Config) (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func unknownKey(path string) error {
	return walleterr.WithDetails(walleterr.ErrUnknownConfigKey, map[string]string{"key": path})
}

func lookupPath(tree map[string]any, path string) (any, error) {
	var node any = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, unknownKey(path)
		}
		if node, ok = m[part]; !ok {
			return nil, unknownKey(path)
		}
	}
	return node, nil
}

// assignPath sets an existing leaf. raw is parsed as a YAML scalar so
// numbers and booleans keep their type.
func assignPath(tree map[string]any, path, raw string) error {
	parts := strings.Split(path, ".")
	var parent any = tree
	if len(parts) > 1 {
		var err error
		if parent, err = lookupPath(tree, strings.Join(parts[:len(parts)-1], ".")); err != nil {
			return unknownKey(path)
		}
	}

	m, ok := parent.(map[string]any)
	if !ok {
		return unknownKey(path)
	}
	leaf := parts[len(parts)-1]
	old, ok := m[leaf]
	if !ok {
		return unknownKey(path)
	}
	if _, isMap := old.(map[string]any); isMap {
		return walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"key": path, "reason": "not a leaf value"})
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		value = raw
	}
	if _, isString := old.(string); isString {
		value = raw
	}
	m[leaf] = value
	return nil
}
