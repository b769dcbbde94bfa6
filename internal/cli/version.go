package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	versionCheck bool

	// releaseChecker is replaced in tests.
	releaseChecker = version.NewChecker("", nil)
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check for a newer release")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	build := version.Current()

	var update *version.Update
	if versionCheck {
		ctx, cancel := contextWithTimeout(cmd, 10*time.Second)
		defer cancel()
		var err error
		if update, err = releaseChecker.Check(ctx, build.Version); err != nil {
			return err
		}
	}

	if formatter.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), struct {
			version.Build

			Update *version.Update `json:"update,omitempty"`
		}{build, update})
	}

	w := cmd.OutOrStdout()
	out(w, "poktwallet %s (commit: %s, built: %s, %s %s)\n",
		build.Version, build.Commit, build.Date, build.GoVersion, build.Platform)
	if update != nil {
		if update.Newer {
			output.Infof(w, "A newer release is available: %s", update.Latest)
		} else {
			outln(w, "You are running the latest release.")
		}
	}
	return nil
}
