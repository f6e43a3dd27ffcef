// Package environ validates the run environment before anything mutates.
//
// Every check here is fatal: running with elevated privilege, running outside
// the tree root, or a missing/empty version marker all abort the run before a
// single module or document is touched.
package environ

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Marker files that identify the tree root.
const (
	VersionFile    = "VERSION"
	GitmodulesFile = ".gitmodules"
)

// CheckPrivilege refuses to run with elevated privilege. Fetched and
// regenerated files would otherwise end up root-owned and break later
// unprivileged builds.
func CheckPrivilege() error {
	if runtime.GOOS == "windows" {
		return nil
	}
	if os.Geteuid() == 0 {
		return fmt.Errorf("refusing to run as root; run as the user who owns the checkout")
	}
	return nil
}

// CheckRoot verifies dir looks like the top of the source tree.
func CheckRoot(dir string) error {
	for _, marker := range []string{VersionFile, GitmodulesFile} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err != nil {
			return fmt.Errorf("%s not found in %s: run from the top of the source tree", marker, dir)
		}
	}
	return nil
}

// ReadVersion reads the expected source version from the VERSION marker.
// The marker holds a single line; surrounding whitespace is insignificant.
func ReadVersion(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, VersionFile))
	if err != nil {
		return "", fmt.Errorf("reading version marker: %w", err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", fmt.Errorf("version marker %s is empty", VersionFile)
	}
	return version, nil
}
