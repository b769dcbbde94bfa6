package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/wallet"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	importModel      string
	importInput      string
	importPassphrase bool
)

// importCmd imports a credential into the registry.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a credential",
	Long: `Import a Morse or Shannon credential in any supported format.

The format is detected automatically. Importing an address that is already
registered is a no-op. The imported wallet becomes the active wallet.

Without --input the credential is read from stdin, or prompted for when
stdin is a terminal.

Examples:
  poktwallet import --model morse --input "$(cat pocket-wallet.json)"
  poktwallet import --model morse --passphrase < key.ppk
  poktwallet import --model shannon`,
	RunE: runImport,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importModel, "model", string(wallet.ModelMorse), "account model: morse or shannon")
	importCmd.Flags().StringVar(&importInput, "input", "", "credential text (default: read stdin)")
	importCmd.Flags().BoolVar(&importPassphrase, "passphrase", false, "prompt for the key file passphrase")
}

// importView is the redacted result printed by import.
type importView struct {
	Kind     string           `json:"kind"`
	Inserted bool             `json:"inserted"`
	Wallets  []*wallet.Record `json:"wallets"`
	Warnings []string         `json:"warnings,omitempty"`
}

func runImport(cmd *cobra.Command, _ []string) error {
	model, err := wallet.ParseAccountModel(importModel)
	if err != nil {
		return err
	}

	code, err := readCredential(cmd.InOrStdin(), importInput, "Credential: ")
	if err != nil {
		return err
	}
	passphrase, err := readPassphrase(importPassphrase, "Key file passphrase: ")
	if err != nil {
		return err
	}

	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	res, err := cc.Importer.Import(cmd.Context(), code, passphrase, model)
	if err != nil {
		return err
	}

	view := importView{Kind: res.Kind.String(), Inserted: res.Inserted, Warnings: res.Warnings}
	for _, rec := range res.Imported {
		view.Wallets = append(view.Wallets, rec.Redacted())
	}

	for _, w := range res.Warnings {
		output.Warn(cmd.ErrOrStderr(), w)
	}

	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), view)
	}

	w := cmd.OutOrStdout()
	for _, rec := range view.Wallets {
		state := "imported"
		if !res.Inserted && rec.Address == res.Record.Address {
			state = "already registered"
		}
		output.Successf(w, "%s %s wallet %s (%s)", state, rec.AccountModel, rec.Address, rec.Label())
	}
	out(w, "Detected format: %s\n", view.Kind)
	return nil
}
