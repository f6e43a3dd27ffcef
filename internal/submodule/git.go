package submodule

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// State is the reconciliation state of one module, re-derived every run.
type State int

const (
	// StateUninitialized means the module was never fetched.
	StateUninitialized State = iota
	// StateStale means the module is fetched but the superproject records a
	// different revision.
	StateStale
	// StateCurrent means the module matches the recorded revision.
	StateCurrent
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStale:
		return "stale"
	case StateCurrent:
		return "current"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Git is the slice of git's submodule surface the reconciler depends on.
// Implementations operate on a single superproject working tree.
type Git interface {
	// RecordedURL returns the URL .gitmodules records for the module path,
	// or "" when none is recorded.
	RecordedURL(path string) (string, error)
	// ConfiguredURL returns the URL git config carries for the module path,
	// or "" when the module was never initialized.
	ConfiguredURL(path string) (string, error)
	// SyncURLs re-synchronizes configured submodule URLs from .gitmodules
	// for all modules.
	SyncURLs() error
	// Status returns module path -> State for every submodule git knows.
	Status() (map[string]State, error)
	// Init fetches the listed module paths in one batch.
	Init(paths []string) error
	// Update moves the listed module paths to their recorded revisions in
	// one batch.
	Update(paths []string) error
}

// CLI is the exec-based Git implementation.
type CLI struct {
	// Dir is the superproject root every command runs in.
	Dir string
}

var _ Git = (*CLI)(nil)

// RecordedURL implements Git.
func (c *CLI) RecordedURL(path string) (string, error) {
	return c.configURL("-f", ".gitmodules", "--get", "submodule."+path+".url")
}

// ConfiguredURL implements Git.
func (c *CLI) ConfiguredURL(path string) (string, error) {
	return c.configURL("--get", "submodule."+path+".url")
}

// configURL runs git config; an unset key (exit status 1) is "" rather than
// an error.
func (c *CLI) configURL(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"config"}, args...)...)
	cmd.Dir = c.Dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("git config failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// SyncURLs implements Git.
func (c *CLI) SyncURLs() error {
	cmd := exec.Command("git", "submodule", "sync", "--quiet")
	cmd.Dir = c.Dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git submodule sync failed: %w\n%s", err, string(output))
	}
	return nil
}

// Status implements Git. It parses `git submodule status` line prefixes:
// "-" means not initialized, "+" means the checked-out revision differs from
// the recorded one, anything else is current.
func (c *CLI) Status() (map[string]State, error) {
	cmd := exec.Command("git", "submodule", "status")
	cmd.Dir = c.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git submodule status failed: %w\n%s", err, string(output))
	}
	return parseStatus(string(output)), nil
}

// parseStatus maps `git submodule status` output to module states.
func parseStatus(output string) map[string]State {
	result := make(map[string]State)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		state := StateCurrent
		switch {
		case strings.HasPrefix(line, "-"):
			state = StateUninitialized
			line = line[1:]
		case strings.HasPrefix(line, "+"):
			state = StateStale
			line = line[1:]
		}

		// Format: "<sha> <path> (<desc>)"
		parts := strings.Fields(line)
		if len(parts) >= 2 {
			result[parts[1]] = state
		}
	}

	return result
}

// Init implements Git.
func (c *CLI) Init(paths []string) error {
	return c.update(append([]string{"--init"}, dashDash(paths)...))
}

// Update implements Git.
func (c *CLI) Update(paths []string) error {
	return c.update(dashDash(paths))
}

func (c *CLI) update(args []string) error {
	cmd := exec.Command("git", append([]string{"submodule", "update"}, args...)...)
	cmd.Dir = c.Dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git submodule update failed: %w\n%s", err, string(output))
	}
	return nil
}

func dashDash(paths []string) []string {
	return append([]string{"--"}, paths...)
}
