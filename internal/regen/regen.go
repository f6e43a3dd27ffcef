// Package regen keeps generated configure artifacts current. For the tree
// root and each selected module it compares the artifact's timestamp against
// its description file and generator inputs, and reruns the generation tool
// chain where anything is newer than the artifact.
package regen

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/preplabs/prep/internal/registry"
	"github.com/preplabs/prep/internal/tools"
	"github.com/spf13/afero"
)

// Build-description and artifact layout per directory.
const (
	// DescriptionFile drives the generation; directories without one are
	// skipped.
	DescriptionFile = "configure.ac"
	// ArtifactFile is the generated configuration script.
	ArtifactFile = "configure"
	// MacroDir holds auxiliary macros; every file in it is a dependency.
	MacroDir = "m4"
	// CommonMacroFile is the shared macro file at the tree root.
	CommonMacroFile = "ac_common.m4"

	// headerDirective in a description file requires the header-generation
	// stage before the main stage. The prefix also matches the plural form.
	headerDirective = "AC_CONFIG_HEADER"
)

// Runner invokes one generation tool in a directory.
type Runner interface {
	Run(dir, tool string) error
}

// Regenerator walks description files and reruns the tool chain where the
// artifact is stale. Timestamps come from the injected filesystem so the
// staleness logic is testable with synthetic mtimes.
type Regenerator struct {
	Fs  afero.Fs
	Run Runner
	Out io.Writer
}

// Regenerate processes the tree root plus each selected module, in order.
// Module order carries no dependency meaning. The first tool failure aborts.
func (g *Regenerator) Regenerate(root string, modules []registry.Module) error {
	dirs := []string{root}
	for _, m := range modules {
		dirs = append(dirs, filepath.Join(root, filepath.FromSlash(m.Path())))
	}

	for _, dir := range dirs {
		ok, err := afero.Exists(g.Fs, filepath.Join(dir, DescriptionFile))
		if err != nil {
			return fmt.Errorf("checking %s: %w", dir, err)
		}
		if !ok {
			// Not fetched, or not autoconf-based.
			continue
		}

		stale, err := g.stale(root, dir)
		if err != nil {
			return err
		}
		if !stale {
			continue
		}

		if err := g.generate(dir); err != nil {
			return err
		}
		fmt.Fprintf(g.Out, "Regenerated %s in %s.\n", ArtifactFile, dir)
	}
	return nil
}

// stale reports whether the artifact in dir must be regenerated. Check order,
// first hit wins: artifact existence, fixed generator inputs, macro directory
// entries, then the description file itself. The artifact is current only if
// it exists and is not older than any of them.
func (g *Regenerator) stale(root, dir string) (bool, error) {
	artifact, err := g.Fs.Stat(filepath.Join(dir, ArtifactFile))
	if isNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", ArtifactFile, err)
	}
	generated := artifact.ModTime()

	fixed := []string{
		filepath.Join(root, CommonMacroFile),
		filepath.Join(dir, "aclocal.m4"),
	}
	for _, dep := range fixed {
		newer, err := g.newerThan(dep, generated)
		if err != nil {
			return false, err
		}
		if newer {
			return true, nil
		}
	}

	macroDir := filepath.Join(dir, MacroDir)
	entries, err := afero.ReadDir(g.Fs, macroDir)
	if err != nil && !isNotExist(err) {
		return false, fmt.Errorf("reading %s: %w", macroDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.ModTime().After(generated) {
			return true, nil
		}
	}

	return g.newerThan(filepath.Join(dir, DescriptionFile), generated)
}

// newerThan reports whether path exists and was modified after t.
func (g *Regenerator) newerThan(path string, t time.Time) (bool, error) {
	fi, err := g.Fs.Stat(path)
	if isNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return fi.ModTime().After(t), nil
}

// generate runs the header stage when the description file asks for one,
// then always the main stage.
func (g *Regenerator) generate(dir string) error {
	data, err := afero.ReadFile(g.Fs, filepath.Join(dir, DescriptionFile))
	if err != nil {
		return fmt.Errorf("reading %s: %w", DescriptionFile, err)
	}

	if strings.Contains(string(data), headerDirective) {
		if err := g.Run.Run(dir, tools.Autoheader); err != nil {
			return fmt.Errorf("%s in %s: %w", tools.Autoheader, dir, err)
		}
	}
	if err := g.Run.Run(dir, tools.Autoconf); err != nil {
		return fmt.Errorf("%s in %s: %w", tools.Autoconf, dir, err)
	}
	return nil
}

func isNotExist(err error) bool {
	return err != nil && errors.Is(err, fs.ErrNotExist)
}
