package docsync

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
)

// Layout of the unpacked documentation bundle.
const (
	// DocDir is the directory the bundle unpacks into, relative to the root.
	DocDir = "doc"
	// InstalledVersionFile records the version of the unpacked bundle.
	InstalledVersionFile = "VERSION.doc"
)

// BundleState is the derived state of the local documentation bundle.
type BundleState int

const (
	// BundleAbsent means no bundle is unpacked (or its version is unknown).
	BundleAbsent BundleState = iota
	// BundleOutOfDate means a bundle is unpacked for a different version.
	BundleOutOfDate
	// BundleOK means the unpacked bundle matches the source version.
	BundleOK
)

func (s BundleState) String() string {
	switch s {
	case BundleAbsent:
		return "absent"
	case BundleOutOfDate:
		return "out-of-date"
	case BundleOK:
		return "ok"
	}
	return fmt.Sprintf("BundleState(%d)", int(s))
}

// InspectBundle reports the local bundle state and the installed version
// without mutating anything.
func InspectBundle(fsys afero.Fs, root, expected string) (BundleState, string) {
	return bundleState(fsys, root, expected)
}

// bundleState re-derives the bundle state from disk. It returns the installed
// version alongside, "" when absent.
func bundleState(fsys afero.Fs, root, expected string) (BundleState, string) {
	docDir := filepath.Join(root, DocDir)
	if ok, err := afero.DirExists(fsys, docDir); err != nil || !ok {
		return BundleAbsent, ""
	}
	data, err := afero.ReadFile(fsys, filepath.Join(docDir, InstalledVersionFile))
	if err != nil {
		return BundleAbsent, ""
	}
	installed := strings.TrimSpace(string(data))
	if installed == "" {
		return BundleAbsent, ""
	}
	if versionsMatch(installed, expected) {
		return BundleOK, installed
	}
	return BundleOutOfDate, installed
}

// versionsMatch compares version strings, tolerating a "v" prefix and
// semver-insignificant formatting differences.
func versionsMatch(installed, expected string) bool {
	if installed == expected {
		return true
	}
	iv, err := semver.NewVersion(strings.TrimPrefix(installed, "v"))
	if err != nil {
		return false
	}
	ev, err := semver.NewVersion(strings.TrimPrefix(expected, "v"))
	if err != nil {
		return false
	}
	return iv.Equal(ev)
}
