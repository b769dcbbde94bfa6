package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	walletListModel string
	walletRemoveYes bool
)

// walletCmd is the parent command for registry operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage registered wallets",
	Long:  `List, inspect, remove, and select the wallets in the registry.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Long: `List registered wallets. The active wallet is marked with '*'.

Example:
  poktwallet wallet list
  poktwallet wallet list --model shannon -o json`,
	Args: cobra.NoArgs,
	RunE: runWalletList,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show one wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletRemoveCmd = &cobra.Command{
	Use:   "remove <address>",
	Short: "Remove a wallet",
	Long: `Remove a wallet from the registry. The stored secret is deleted and
cannot be recovered unless you still have the original credential.`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletRemove,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletUseCmd = &cobra.Command{
	Use:   "use <address>",
	Short: "Make a wallet the active wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletUse,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletListCmd, walletShowCmd, walletRemoveCmd, walletUseCmd)

	walletListCmd.Flags().StringVar(&walletListModel, "model", "", "only list this account model")
	walletRemoveCmd.Flags().BoolVarP(&walletRemoveYes, "yes", "y", false, "skip confirmation")
}

// walletEntry is one row of wallet list.
type walletEntry struct {
	*wallet.Record

	Active bool `json:"active"`
}

func listModels(flag string) ([]wallet.AccountModel, error) {
	if flag == "" {
		return []wallet.AccountModel{wallet.ModelMorse, wallet.ModelShannon}, nil
	}
	m, err := wallet.ParseAccountModel(flag)
	if err != nil {
		return nil, err
	}
	return []wallet.AccountModel{m}, nil
}

func collectWallets(ctx context.Context, cc *CommandContext, models []wallet.AccountModel) ([]walletEntry, error) {
	active, err := cc.Registry.Active(ctx)
	if err != nil {
		return nil, err
	}

	entries := []walletEntry{}
	for _, m := range models {
		recs, err := cc.Registry.List(ctx, m)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			entries = append(entries, walletEntry{Record: rec.Redacted(), Active: rec.Address == active})
		}
	}
	return entries, nil
}

func runWalletList(cmd *cobra.Command, _ []string) error {
	models, err := listModels(walletListModel)
	if err != nil {
		return err
	}
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	entries, err := collectWallets(cmd.Context(), cc, models)
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		outln(w, "No wallets registered. Use 'poktwallet import' to add one.")
		return nil
	}

	table := output.NewTable("", "MODEL", "ADDRESS", "NAME", "ORIGIN", "CREATED")
	for _, e := range entries {
		marker := ""
		if e.Active {
			marker = "*"
		}
		table.AddRow(marker, string(e.AccountModel), e.Address, e.Name, string(e.SecretOrigin),
			e.CreatedAt.Local().Format(time.DateTime))
	}
	return table.Render(w)
}

func runWalletShow(cmd *cobra.Command, args []string) error {
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	rec, err := cc.Registry.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	active, err := cc.Registry.Active(cmd.Context())
	if err != nil {
		return err
	}
	entry := walletEntry{Record: rec.Redacted(), Active: rec.Address == active}

	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), entry)
	}

	table := output.NewTable("FIELD", "VALUE")
	table.SetNoHeader(true)
	table.AddRow("Address:", entry.Address)
	table.AddRow("Model:", string(entry.AccountModel))
	table.AddRow("Name:", entry.Label())
	table.AddRow("Origin:", string(entry.SecretOrigin))
	table.AddRow("Public key:", entry.PublicKey)
	table.AddRow("Created:", entry.CreatedAt.Local().Format(time.DateTime))
	table.AddRow("Active:", fmt.Sprint(entry.Active))
	return table.Render(cmd.OutOrStdout())
}

func runWalletRemove(cmd *cobra.Command, args []string) error {
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	rec, err := cc.Registry.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if !walletRemoveYes && !promptConfirmFn(fmt.Sprintf("Remove %s wallet %s?", rec.AccountModel, rec.Address)) {
		return walleterr.WithSuggestion(walleterr.Wrap(walleterr.ErrGeneral, "removal cancelled"), "pass --yes to skip the confirmation")
	}

	if err := cc.Registry.Remove(cmd.Context(), rec.AccountModel, rec.Address); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("Removed %s wallet %s", rec.AccountModel, rec.Address), formatter.Format())
}

func runWalletUse(cmd *cobra.Command, args []string) error {
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	rec, err := cc.Registry.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := cc.Registry.SetActive(cmd.Context(), rec.Address); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("Active wallet: %s", rec.Address), formatter.Format())
}
