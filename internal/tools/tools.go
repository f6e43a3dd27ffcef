// Package tools resolves the external executables the run depends on.
package tools

import (
	"fmt"
	"os/exec"
)

// Names of the required external tools.
const (
	Git        = "git"
	Autoconf   = "autoconf"
	Autoheader = "autoheader"
)

// Required lists every tool the prepare workflow invokes.
func Required() []string {
	return []string{Git, Autoconf, Autoheader}
}

// Locate resolves each named tool on PATH and returns name -> absolute path.
// The first missing tool fails the lookup; this runs before any mutation so a
// half-prepared tree is never left behind by a missing executable.
func Locate(names ...string) (map[string]string, error) {
	paths := make(map[string]string, len(names))
	for _, name := range names {
		path, err := exec.LookPath(name)
		if err != nil {
			return nil, fmt.Errorf("required tool %q not found on PATH: %w", name, err)
		}
		paths[name] = path
	}
	return paths, nil
}
