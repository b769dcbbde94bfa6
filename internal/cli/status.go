package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/config"
	"github.com/mrz1836/poktwallet/internal/metrics"
	"github.com/mrz1836/poktwallet/internal/network"
	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/wallet"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var statusOffline bool

// statusCmd summarizes local state and the migration service.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show wallet, network, and service status",
	Long: `Show the store location, wallet counts, the network selection, whether the
migration service is reachable, and counters for this run.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusOffline, "offline", false, "skip the migration service health check")
}

type serviceStatus struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

type statusView struct {
	Home          string           `json:"home"`
	StoreBackend  string           `json:"store_backend"`
	LogFile       string           `json:"log_file,omitempty"`
	LogLevel      string           `json:"log_level"`
	Wallets       map[string]int   `json:"wallets"`
	ActiveAddress string           `json:"active_address,omitempty"`
	Network       network.Config   `json:"network"`
	Service       *serviceStatus   `json:"service,omitempty"`
	Metrics       metrics.Snapshot `json:"metrics"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc, err := requireApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	view := statusView{
		Home:         cfg.Home,
		StoreBackend: cfg.Store.Backend,
		LogFile:      cc.Logger.Path(),
		LogLevel:     cc.Logger.Level().String(),
		Wallets:      map[string]int{},
		Network:      cc.Resolver.Current(),
	}
	for _, m := range []wallet.AccountModel{wallet.ModelMorse, wallet.ModelShannon} {
		recs, err := cc.Registry.List(ctx, m)
		if err != nil {
			return err
		}
		view.Wallets[string(m)] = len(recs)
	}
	if view.ActiveAddress, err = cc.Registry.Active(ctx); err != nil {
		return err
	}

	if !statusOffline {
		svc := &serviceStatus{URL: cc.Remote.BaseURL()}
		hctx, cancel := contextWithTimeout(cmd, 10*time.Second)
		_, healthErr := cc.Remote.Health(hctx)
		cancel()
		svc.Reachable = healthErr == nil
		if healthErr != nil {
			svc.Error = healthErr.Error()
		}
		view.Service = svc
	}
	view.Metrics = cc.Metrics.Snapshot()

	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), view)
	}

	w := cmd.OutOrStdout()
	table := output.NewTable("", "")
	table.SetNoHeader(true)
	table.AddRow("Home:", view.Home)
	table.AddRow("Config:", config.Path(view.Home))
	table.AddRow("Store:", view.StoreBackend)
	if view.LogFile != "" {
		table.AddRow("Log:", fmt.Sprintf("%s (%s)", view.LogFile, view.LogLevel))
	}
	table.AddRow("Morse wallets:", fmt.Sprint(view.Wallets[string(wallet.ModelMorse)]))
	table.AddRow("Shannon wallets:", fmt.Sprint(view.Wallets[string(wallet.ModelShannon)]))
	table.AddRow("Active wallet:", view.ActiveAddress)
	table.AddRow("Network:", fmt.Sprintf("%s %s", view.Network.AccountModel, netName(view.Network.IsMainnet)))
	if view.Service != nil {
		state := "reachable"
		if !view.Service.Reachable {
			state = "unavailable: " + view.Service.Error
		}
		table.AddRow("Migration service:", fmt.Sprintf("%s (%s)", view.Service.URL, state))
	}
	table.AddRow("Remote calls:", fmt.Sprintf("%d (%d failed, avg %.1f ms)",
		view.Metrics.RemoteCallsTotal, view.Metrics.RemoteErrorsTotal, cc.Metrics.RemoteLatencyAvgMs()))
	return table.Render(w)
}
