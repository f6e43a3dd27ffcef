package cli

import (
	"fmt"
	"os"

	"github.com/preplabs/prep/internal/branding"
	"github.com/preplabs/prep/internal/config"
	"github.com/preplabs/prep/internal/docsync"
	"github.com/preplabs/prep/internal/environ"
	"github.com/preplabs/prep/internal/prompt"
	"github.com/preplabs/prep/internal/regen"
	"github.com/preplabs/prep/internal/registry"
	"github.com/preplabs/prep/internal/submodule"
	"github.com/preplabs/prep/internal/tools"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// runPrepare drives the whole workflow: environment checks, submodule
// reconciliation, documentation sync, configure regeneration. Everything
// before the first prompt is read-only, so a misconfigured environment never
// leaves a half-prepared tree.
func runPrepare(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	if err := environ.CheckPrivilege(); err != nil {
		return err
	}
	if err := environ.CheckRoot(root); err != nil {
		return err
	}
	version, err := environ.ReadVersion(root)
	if err != nil {
		return err
	}
	if _, err := tools.Locate(tools.Required()...); err != nil {
		return err
	}

	config.Load()

	reg, err := registry.Load(root)
	if err != nil {
		return err
	}

	confirm := prompt.NewTerminal(os.Stdin, cmd.ErrOrStderr(), flagYes)
	confirm.MaxRetries = config.PromptMaxRetries()
	confirm.Budget = config.AutoConfirmBudget()

	reconciler := &submodule.Reconciler{
		Git:     &submodule.CLI{Dir: root},
		Confirm: confirm,
		Out:     cmd.OutOrStdout(),
	}
	if err := reconciler.Reconcile(reg.All(), reg.Select(flagAll)); err != nil {
		return err
	}

	mirrors := config.DocServers()
	if flagServer != "" {
		mirrors = []string{flagServer}
	}

	fs := afero.NewOsFs()
	engine := &docsync.Engine{
		Fs:           fs,
		Root:         root,
		Version:      version,
		BundlePrefix: branding.DocPrefix(),
		Mirrors:      mirrors,
		Store:        docsync.NewPolicyStore(fs, root),
		Confirm:      confirm,
		Force:        flagMan,
		SiteURL:      branding.DocSiteURL(),
		Out:          cmd.ErrOrStderr(),
	}
	if err := engine.Sync(); err != nil {
		return err
	}

	regenerator := &regen.Regenerator{Fs: fs, Run: regen.ExecRunner{}, Out: cmd.OutOrStdout()}
	if err := regenerator.Regenerate(root, reg.Select(flagAll)); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "The tree is ready for compilation.")
	return nil
}
