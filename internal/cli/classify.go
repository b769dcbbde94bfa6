package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/wallet"
)

// classifyCmd prints the detected credential format without importing it.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var classifyCmd = &cobra.Command{
	Use:   "classify [input]",
	Short: "Detect the format of a credential",
	Long: `Detect the format of a credential without importing it.

Prints one of: ppk, json-wallet, hex-private-key, mnemonic, unrecognized.
The input is taken from the argument or stdin.

Examples:
  poktwallet classify 0x4f3c...
  poktwallet classify < export.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	input, err := readCredential(cmd.InOrStdin(), arg, "Credential: ")
	if err != nil {
		return err
	}

	c := wallet.Classify(input)
	if formatter.IsJSON() {
		view := map[string]string{"kind": c.Kind.String()}
		if c.Model != "" {
			view["account_model"] = string(c.Model)
		}
		return output.WriteJSON(cmd.OutOrStdout(), view)
	}

	outln(cmd.OutOrStdout(), c.Kind.String())
	return nil
}
