package cli

import (
	"github.com/preplabs/prep/internal/branding"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagYes    bool
	flagAll    bool
	flagMan    bool
	flagServer string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` prepares a freshly cloned multi-module source tree for
compilation: it reconciles git submodules against the recorded state, installs
a documentation bundle matching the source version, and regenerates stale
configure scripts. Run it from the top of the source tree.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPrepare,
}

func init() {
	// Unknown flags print usage and exit nonzero.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.Println(cmd.UsageString())
		return err
	})

	rootCmd.Flags().BoolVar(&flagYes, "yes", false, "Assume yes on all prompts (bounded by a safety valve)")
	rootCmd.Flags().BoolVar(&flagAll, "all", false, "Process the full module set instead of the core subset")
	rootCmd.Flags().BoolVar(&flagMan, "man", false, "Download the documentation bundle regardless of the stored policy")
	rootCmd.Flags().StringVar(&flagServer, "server", "", "Use only this documentation mirror URL")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
