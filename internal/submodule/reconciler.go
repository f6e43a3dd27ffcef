// Package submodule reconciles the on-disk submodule tree against the
// superproject's recorded state: it classifies each module as uninitialized,
// stale, or current, and drives batch fetch/update operations gated by user
// confirmation.
package submodule

import (
	"fmt"
	"io"

	"github.com/preplabs/prep/internal/prompt"
	"github.com/preplabs/prep/internal/registry"
)

// Reconciler compares the desired module set against live git state and
// brings the tree up to date. It never mutates the catalog, only the tree.
type Reconciler struct {
	Git     Git
	Confirm prompt.Confirmer
	Out     io.Writer
}

// Reconcile brings the target module set to the recorded revisions.
// known is the full catalog; target is the subset selected for this run.
//
// The sequence is fixed: synchronize drifted remote URLs (metadata only, no
// confirmation), fetch uninitialized target modules as one confirmed batch,
// then update stale modules — recomputed over the full catalog — as one
// confirmed batch. With no drift and no confirmed batches the run performs no
// mutating git calls at all.
func (r *Reconciler) Reconcile(known, target []registry.Module) error {
	if err := r.syncDriftedURLs(known); err != nil {
		return err
	}

	states, err := r.Git.Status()
	if err != nil {
		return err
	}

	var uninitialized []registry.Module
	for _, m := range target {
		if stateOf(states, m) == StateUninitialized {
			uninitialized = append(uninitialized, m)
		}
	}

	if len(uninitialized) > 0 {
		fmt.Fprintln(r.Out, "The following modules are not yet downloaded:")
		for _, m := range uninitialized {
			fmt.Fprintf(r.Out, "  %s\n", m.Path())
		}
		ok, err := r.Confirm.Confirm("Download the modules listed above?", true)
		if err != nil {
			return err
		}
		if ok {
			if err := r.Git.Init(paths(uninitialized)); err != nil {
				return fmt.Errorf("fetching modules: %w", err)
			}
		}
	}

	// Staleness is judged after the fetch, over the full catalog: modules
	// outside the target subset still track the recorded revisions.
	states, err = r.Git.Status()
	if err != nil {
		return err
	}

	var stale []registry.Module
	for _, m := range known {
		if states[m.Path()] == StateStale {
			stale = append(stale, m)
		}
	}

	if len(stale) == 0 {
		fmt.Fprintln(r.Out, "All modules are up to date.")
		return nil
	}

	fmt.Fprintln(r.Out, "The following modules are out of date:")
	for _, m := range stale {
		fmt.Fprintf(r.Out, "  %s\n", m.Path())
	}
	ok, err := r.Confirm.Confirm("Update the modules listed above?", true)
	if err != nil {
		return err
	}
	if ok {
		if err := r.Git.Update(paths(stale)); err != nil {
			return fmt.Errorf("updating modules: %w", err)
		}
	}

	return nil
}

// syncDriftedURLs re-synchronizes configured submodule URLs when any module's
// recorded remote location has moved. A metadata-only correction, so it runs
// without confirmation.
func (r *Reconciler) syncDriftedURLs(known []registry.Module) error {
	for _, m := range known {
		recorded, err := r.Git.RecordedURL(m.Path())
		if err != nil {
			return err
		}
		configured, err := r.Git.ConfiguredURL(m.Path())
		if err != nil {
			return err
		}
		if recorded != "" && configured != "" && recorded != configured {
			fmt.Fprintln(r.Out, "Remote module locations changed; synchronizing metadata.")
			if err := r.Git.SyncURLs(); err != nil {
				return fmt.Errorf("synchronizing submodule metadata: %w", err)
			}
			return nil
		}
	}
	return nil
}

// stateOf treats a module git has no record of as uninitialized.
func stateOf(states map[string]State, m registry.Module) State {
	if s, ok := states[m.Path()]; ok {
		return s
	}
	return StateUninitialized
}

func paths(modules []registry.Module) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = m.Path()
	}
	return out
}
