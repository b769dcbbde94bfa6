package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/network"
	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	networkSetModel   string
	networkSetMainnet bool
	networkSetTestnet bool
)

// networkCmd is the parent command for network selection.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show or change the network",
	Long: `Show or change the persisted network selection.

When nothing has been chosen the network defaults to Shannon testnet. Morse
wallets always resolve to Morse testnet regardless of the selection.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current network selection",
	Args:  cobra.NoArgs,
	RunE:  runNetworkShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Choose the network explicitly",
	Long: `Persist an explicit network choice. Imports never override it.

Example:
  poktwallet network set --model shannon --mainnet`,
	Args: cobra.NoArgs,
	RunE: runNetworkSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkResolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Show the network used for an address",
	Args:  cobra.ExactArgs(1),
	RunE:  runNetworkResolve,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(networkCmd)
	networkCmd.AddCommand(networkShowCmd, networkSetCmd, networkResolveCmd)

	networkSetCmd.Flags().StringVar(&networkSetModel, "model", string(wallet.ModelShannon), "account model: morse or shannon")
	networkSetCmd.Flags().BoolVar(&networkSetMainnet, "mainnet", false, "use mainnet")
	networkSetCmd.Flags().BoolVar(&networkSetTestnet, "testnet", false, "use testnet")
	networkSetCmd.MarkFlagsMutuallyExclusive("mainnet", "testnet")
	networkSetCmd.MarkFlagsOneRequired("mainnet", "testnet")
}

func netName(mainnet bool) string {
	if mainnet {
		return "mainnet"
	}
	return "testnet"
}

func runNetworkShow(cmd *cobra.Command, _ []string) error {
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	cur := cc.Resolver.Current()
	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), cur)
	}

	source := network.SourceDefault
	if cur.Explicit {
		source = network.SourceExplicit
	}
	out(cmd.OutOrStdout(), "%s %s (%s)\n", cur.AccountModel, netName(cur.IsMainnet), source)
	return nil
}

func runNetworkSet(cmd *cobra.Command, _ []string) error {
	model, err := wallet.ParseAccountModel(networkSetModel)
	if err != nil {
		return err
	}
	if networkSetMainnet == networkSetTestnet {
		return walleterr.WithSuggestion(walleterr.ErrInvalidInput, "pass exactly one of --mainnet or --testnet")
	}

	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}
	if err := cc.Resolver.SetNetwork(cmd.Context(), model, networkSetMainnet); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(),
		fmt.Sprintf("Network set to %s %s", model, netName(networkSetMainnet)), formatter.Format())
}

func runNetworkResolve(cmd *cobra.Command, args []string) error {
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}

	res, err := cc.Resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), res)
	}
	out(cmd.OutOrStdout(), "%s %s (%s)\n", res.AccountModel, netName(res.IsMainnet), res.Source)
	return nil
}
