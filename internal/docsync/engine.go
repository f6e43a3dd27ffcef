// Package docsync installs a pre-built documentation bundle matching the
// source version, trying an ordered mirror list under a remembered user
// policy. Documentation is best effort: nothing here is fatal to the run
// except an exhausted confirmation budget.
package docsync

import (
	"fmt"
	"io"
	"net/http"

	"github.com/preplabs/prep/internal/prompt"
	"github.com/spf13/afero"
)

// Engine drives the fetch-and-unpack cycle for the documentation bundle.
type Engine struct {
	Fs      afero.Fs
	Root    string
	Version string
	// BundlePrefix names the archive: <BundlePrefix>-<Version>.tar.gz.
	BundlePrefix string
	Mirrors      []string
	Store        *PolicyStore
	Confirm      prompt.Confirmer
	Client       *http.Client
	// Force downloads this run regardless of the stored policy, which is
	// neither consulted nor written.
	Force bool
	// SiteURL is named in the final warning when no bundle got installed.
	SiteURL string
	Out     io.Writer
}

var policyChoices = []string{
	"download the documentation now and on future runs",
	"ask again before downloading (remembered)",
	"warn only, never download (remembered)",
}

// choiceDefault is the silent answer under auto-confirm: ask, never download.
// Downloading is a side-effecting network action and must not be assumed safe
// to repeat unattended.
const choiceDefault = 1

// Sync brings the local documentation bundle up to date if the user's policy
// allows. Mirrors are consulted in order until the bundle is OK or the list
// is exhausted; running out of mirrors is a warning, not an error. The only
// error returned is a fatal confirmation failure.
func (e *Engine) Sync() error {
	state, installed := bundleState(e.Fs, e.Root, e.Version)

	for i := 0; state != BundleOK && i < len(e.Mirrors); i++ {
		mirror := e.Mirrors[i]

		policy, err := e.policyForRun()
		if err != nil {
			return err
		}

		switch policy {
		case PolicyWarn:
			fmt.Fprintf(e.Out, "Skipping documentation download (policy: warn).\n")
			continue
		case PolicyAsk:
			ok, err := e.Confirm.Confirm(
				fmt.Sprintf("Download documentation bundle from %s?", mirror), true)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}

		e.fetchAndUnpack(mirror)
		state, installed = bundleState(e.Fs, e.Root, e.Version)
	}

	switch state {
	case BundleAbsent:
		fmt.Fprintf(e.Out, "WARNING: no local documentation bundle is installed.\n")
		fmt.Fprintf(e.Out, "         The documentation remains available at %s\n", e.SiteURL)
	case BundleOutOfDate:
		fmt.Fprintf(e.Out, "WARNING: installed documentation is for version %s, but the source is %s.\n",
			installed, e.Version)
	}

	return nil
}

// policyForRun resolves the effective policy for the current attempt,
// prompting for and persisting a choice on the first ambiguous encounter.
func (e *Engine) policyForRun() (Policy, error) {
	if e.Force {
		return PolicyDownload, nil
	}

	policy, err := e.Store.Load()
	if err != nil {
		fmt.Fprintf(e.Out, "WARNING: %v; asking again.\n", err)
	}
	if policy != PolicyUnset {
		return policy, nil
	}

	idx, err := e.Confirm.Choose(
		"No documentation bundle is installed. How should documentation be handled?",
		policyChoices, choiceDefault)
	if err != nil {
		return PolicyUnset, err
	}
	policy = [...]Policy{PolicyDownload, PolicyAsk, PolicyWarn}[idx]

	if err := e.Store.Save(policy); err != nil {
		fmt.Fprintf(e.Out, "WARNING: could not remember documentation policy: %v\n", err)
	}
	return policy, nil
}
