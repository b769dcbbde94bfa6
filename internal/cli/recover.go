package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	recoverLegacy     bool
	recoverModel      string
	recoverCandidates []string
	recoverPrompt     bool
)

// recoverCmd retrieves a stored mnemonic, trying common passphrases on
// encrypted containers.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var recoverCmd = &cobra.Command{
	Use:   "recover <address>",
	Short: "Recover the mnemonic of a stored wallet",
	Long: `Recover the mnemonic of a stored wallet.

Encrypted key files are opened with the passphrases you supply and then with
a list of commonly used passphrases. This weakens the protection of the key
file, so it requires both security.legacy_recovery: true in the config and
the --legacy flag.

Example:
  poktwallet recover pokt1... --legacy --try "my old passphrase"`,
	Args: cobra.ExactArgs(1),
	RunE: runRecover,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().BoolVar(&recoverLegacy, "legacy", false, "allow trying common passphrases")
	recoverCmd.Flags().StringVar(&recoverModel, "model", "", "account model (default: detect from address)")
	recoverCmd.Flags().StringArrayVar(&recoverCandidates, "try", nil, "passphrase to try first (repeatable)")
	recoverCmd.Flags().BoolVar(&recoverPrompt, "passphrase", false, "prompt for a passphrase to try first")
}

func runRecover(cmd *cobra.Command, args []string) error {
	if !recoverLegacy || !cfg.Security.LegacyRecovery {
		return walleterr.WithSuggestion(
			walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "legacy recovery is disabled"}),
			"set security.legacy_recovery: true in config.yaml and pass --legacy",
		)
	}

	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	address := args[0]
	var model wallet.AccountModel
	if recoverModel != "" {
		if model, err = wallet.ParseAccountModel(recoverModel); err != nil {
			return err
		}
	} else {
		rec, findErr := cc.Registry.Find(cmd.Context(), address)
		if findErr != nil && !walleterr.Is(findErr, walleterr.ErrRecordNotFound) {
			return findErr
		}
		model = wallet.ModelShannon
		if rec != nil {
			model = rec.AccountModel
		}
	}

	candidates := append([]string(nil), recoverCandidates...)
	typed, err := readPassphrase(recoverPrompt, "Passphrase to try: ")
	if err != nil {
		return err
	}
	if typed != "" {
		candidates = append([]string{typed}, candidates...)
	}

	result, err := cc.Recoverer().RecoverMnemonic(cmd.Context(), model, address, candidates)
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), map[string]string{
			"address": address,
			"model":   string(model),
			"result":  result,
		})
	}
	outln(cmd.OutOrStdout(), result)
	return nil
}
