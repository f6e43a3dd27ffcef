package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/preplabs/prep/internal/docsync"
	"github.com/preplabs/prep/internal/environ"
	"github.com/preplabs/prep/internal/registry"
	"github.com/preplabs/prep/internal/submodule"
	"github.com/preplabs/prep/internal/tools"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the source tree",
	Long:  `Run read-only diagnostic checks on the checkout and environment. Nothing is fetched, written, or regenerated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}

		runToolCheck()
		runTreeCheck(root)
		runModuleCheck(root)
		runDocCheck(root)
		return nil
	},
}

func runToolCheck() {
	fmt.Println("Tool check:")
	for _, name := range tools.Required() {
		checkBinary(name)
	}
}

func checkBinary(name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Printf("  [MISS] %s not found\n", name)
		return
	}
	fmt.Printf("  [ OK ] %s found at %s\n", name, path)
}

func runTreeCheck(root string) {
	fmt.Println("Tree check:")

	if err := environ.CheckPrivilege(); err != nil {
		fmt.Printf("  [FAIL] %v\n", err)
	} else {
		fmt.Printf("  [ OK ] not running with elevated privilege\n")
	}

	if err := environ.CheckRoot(root); err != nil {
		fmt.Printf("  [FAIL] %v\n", err)
		return
	}
	fmt.Printf("  [ OK ] %s looks like a tree root\n", root)

	version, err := environ.ReadVersion(root)
	if err != nil {
		fmt.Printf("  [FAIL] %v\n", err)
		return
	}
	fmt.Printf("  [ OK ] source version %s\n", version)
}

func runModuleCheck(root string) {
	fmt.Println("Module check:")

	reg, err := registry.Load(root)
	if err != nil {
		fmt.Printf("  [FAIL] %v\n", err)
		return
	}

	git := &submodule.CLI{Dir: root}
	states, err := git.Status()
	if err != nil {
		fmt.Printf("  [WARN] cannot query submodule status: %v\n", err)
		return
	}

	for _, m := range reg.All() {
		state, known := states[m.Path()]
		switch {
		case !known || state == submodule.StateUninitialized:
			fmt.Printf("  [WARN] %s: not downloaded\n", m.Path())
		case state == submodule.StateStale:
			fmt.Printf("  [WARN] %s: out of date\n", m.Path())
		default:
			fmt.Printf("  [ OK ] %s: current\n", m.Path())
		}
	}
}

func runDocCheck(root string) {
	fmt.Println("Documentation check:")

	version, err := environ.ReadVersion(root)
	if err != nil {
		fmt.Printf("  [WARN] cannot determine expected version: %v\n", err)
		return
	}

	fs := afero.NewOsFs()
	state, installed := docsync.InspectBundle(fs, root, version)
	switch state {
	case docsync.BundleOK:
		fmt.Printf("  [ OK ] documentation bundle %s installed\n", installed)
	case docsync.BundleOutOfDate:
		fmt.Printf("  [WARN] documentation is %s, source is %s\n", installed, version)
	case docsync.BundleAbsent:
		fmt.Printf("  [WARN] no documentation bundle installed\n")
	}

	policy, err := docsync.NewPolicyStore(fs, root).Load()
	switch {
	case err != nil:
		fmt.Printf("  [WARN] %v\n", err)
	case policy == docsync.PolicyUnset:
		fmt.Printf("  [INFO] no documentation policy remembered yet\n")
	default:
		fmt.Printf("  [ OK ] remembered documentation policy: %s\n", policy)
	}
}
