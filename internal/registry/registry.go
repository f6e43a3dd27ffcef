package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// PathPrefix is the namespace under which every module lives in the tree.
const PathPrefix = "modules"

// ManifestFile is the optional catalog override at the tree root.
const ManifestFile = "modules.yaml"

// Module is one independently versioned sub-component of the source tree.
type Module struct {
	Name string `yaml:"name"`
	// Core marks membership in the default build subset; the rest is only
	// selected with --all.
	Core bool `yaml:"core"`
}

// Path returns the module's namespaced path relative to the tree root.
func (m Module) Path() string {
	return PathPrefix + "/" + m.Name
}

// Registry is the static catalog of known modules. It is enumerated once per
// run and never mutated.
type Registry struct {
	modules []Module
}

// defaultModules is the built-in catalog, used when no modules.yaml overrides it.
var defaultModules = []Module{
	{Name: "clib", Core: true},
	{Name: "xml", Core: true},
	{Name: "http", Core: true},
	{Name: "unit", Core: true},
	{Name: "docgen", Core: true},
	{Name: "readline", Core: false},
	{Name: "zlib", Core: false},
	{Name: "ssl", Core: false},
	{Name: "odbc", Core: false},
	{Name: "table", Core: false},
}

// Default returns the built-in catalog.
func Default() *Registry {
	return &Registry{modules: append([]Module(nil), defaultModules...)}
}

// manifest mirrors the modules.yaml layout.
type manifest struct {
	Modules []Module `yaml:"modules"`
}

// Load returns the catalog for the tree rooted at dir. When a modules.yaml
// manifest is present it replaces the built-in catalog after schema
// validation; otherwise the built-in catalog is used.
func Load(dir string) (*Registry, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}

	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", ManifestFile, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%s: %s", ManifestFile, result.Summary())
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}

	seen := make(map[string]bool, len(m.Modules))
	for _, mod := range m.Modules {
		if seen[mod.Name] {
			return nil, fmt.Errorf("%s: duplicate module %q", ManifestFile, mod.Name)
		}
		seen[mod.Name] = true
	}

	return &Registry{modules: m.Modules}, nil
}

// All returns every known module in declared order.
func (r *Registry) All() []Module {
	return append([]Module(nil), r.modules...)
}

// Select returns the target module set: the core subset by default, or the
// full catalog when all is set. Declared order is preserved.
func (r *Registry) Select(all bool) []Module {
	if all {
		return r.All()
	}
	var core []Module
	for _, m := range r.modules {
		if m.Core {
			core = append(core, m)
		}
	}
	return core
}

// Find returns the module with the given name, or false.
func (r *Registry) Find(name string) (Module, bool) {
	for _, m := range r.modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}
