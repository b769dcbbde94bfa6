package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/migration"
	"github.com/mrz1836/poktwallet/internal/output"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// maxStageAttempts bounds how often a failed wizard step is re-prompted.
const maxStageAttempts = 3

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	migrateInput           string
	migrateYes             bool
	migratePassphrase      bool
	migrateSealDestination bool
)

// migrateCmd runs the guided Morse to Shannon migration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a Morse account to Shannon",
	Long: `Walk through migrating a Morse account to a Shannon wallet.

Steps:
  1. Import the Morse credential (any supported format)
  2. Select the active Shannon wallet or generate a new one
  3. Confirm, then hand both to the migration service

The migration service is checked before anything is submitted. A failed
hand-off is final for this run; start again with a new 'poktwallet migrate'.

Examples:
  poktwallet migrate
  poktwallet migrate --input "$(cat pocket-wallet.json)" --yes`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVar(&migrateInput, "input", "", "Morse credential (default: prompt or stdin)")
	migrateCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false, "submit without asking for confirmation")
	migrateCmd.Flags().BoolVar(&migratePassphrase, "passphrase", false, "prompt for the Morse key file passphrase")
	migrateCmd.Flags().BoolVar(&migrateSealDestination, "encrypt-destination", false,
		"encrypt a newly generated Shannon mnemonic with a passphrase")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	interactive := migrateInput == "" && isTerminal(cmd.InOrStdin())
	session := cc.Orchestrator().NewSession()

	// Step 1
	err = retryStage(stderr, interactive, func() error {
		code, readErr := readCredential(cmd.InOrStdin(), migrateInput, "Morse credential: ")
		if readErr != nil {
			return readErr
		}
		pass, readErr := readPassphrase(migratePassphrase, "Key file passphrase: ")
		if readErr != nil {
			return readErr
		}
		res, importErr := session.ImportSource(ctx, code, pass)
		if importErr != nil {
			return importErr
		}
		for _, w := range res.Warnings {
			output.Warn(stderr, w)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Step 2
	var provisioned *migration.Provisioned
	err = retryStage(stderr, interactive, func() error {
		pass, readErr := readPassphrase(migrateSealDestination, "Passphrase for the new Shannon wallet: ")
		if readErr != nil {
			return readErr
		}
		var provErr error
		provisioned, provErr = session.ProvisionDestination(ctx, pass)
		return provErr
	})
	if err != nil {
		return err
	}

	snap := session.Snapshot()
	if !formatter.IsJSON() {
		printMigrationPlan(stdout, snap, provisioned)
	}

	// Step 3
	if !migrateYes && !promptConfirmFn("Submit this migration?") {
		return walleterr.WithSuggestion(walleterr.Wrap(walleterr.ErrGeneral, "migration cancelled"),
			"your wallets were saved; run 'poktwallet migrate' again to continue")
	}

	outcome, err := session.ConfirmMigrate(ctx)
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		return output.WriteJSON(stdout, struct {
			*migration.Outcome

			Mnemonic string `json:"generated_mnemonic,omitempty"`
		}{Outcome: outcome, Mnemonic: provisioned.Mnemonic})
	}
	output.Successf(stdout, "Migrated %s to %s", outcome.SourceAddress, outcome.DestinationAddress)
	return nil
}

// retryStage runs step, re-prompting interactive users after a failure.
func retryStage(stderr io.Writer, interactive bool, step func() error) error {
	var err error
	for attempt := 1; attempt <= maxStageAttempts; attempt++ {
		if err = step(); err == nil {
			return nil
		}
		if !interactive || walleterr.Is(err, walleterr.ErrInvalidStage) {
			return err
		}
		_ = output.FormatError(stderr, err, output.FormatText)
		if attempt < maxStageAttempts {
			out(stderr, "Please try again (%d of %d attempts left).\n\n", maxStageAttempts-attempt, maxStageAttempts)
		}
	}
	return err
}

func printMigrationPlan(w io.Writer, snap migration.Snapshot, p *migration.Provisioned) {
	if p.Mnemonic != "" {
		output.Warn(w, "A new Shannon wallet was generated. Write down its recovery phrase now:")
		outln(w)
		outln(w, "  "+p.Mnemonic)
		outln(w)
	}

	table := output.NewTable("", "")
	table.SetNoHeader(true)
	table.AddRow("From (Morse):", snap.SourceAddress)
	dest := snap.DestinationAddress
	if p.Reused {
		dest += " (existing wallet)"
	}
	table.AddRow("To (Shannon):", dest)
	_ = table.Render(w)
	outln(w)
}
