// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package and rebuild; Go's //go:embed
// bakes the values into the binary.
package branding

import (
	_ "embed"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string   `yaml:"cli_name"`
	DisplayName string   `yaml:"display_name"`
	Description string   `yaml:"description"`
	EnvPrefix   string   `yaml:"env_prefix"`
	HomeDir     string   `yaml:"home_dir"`
	DocPrefix   string   `yaml:"doc_prefix"`
	DocSiteURL  string   `yaml:"doc_site_url"`
	DocServers  []string `yaml:"doc_servers"`
	GoModule    string   `yaml:"go_module"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "prep",
			DisplayName: "Prep",
			Description: "Prepare a multi-module source checkout for compilation",
			EnvPrefix:   "PREP",
			HomeDir:     ".prep",
			DocPrefix:   "prep-doc",
			DocSiteURL:  "https://docs.preplabs.dev",
			DocServers: []string{
				"https://download.preplabs.dev/doc",
				"https://mirror.preplabs.dev/doc",
			},
			GoModule: "github.com/preplabs/prep",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "prep").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Prep").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "PREP").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// HomeDir returns the dot-directory name under $HOME (e.g., ".prep").
func HomeDir() string { load(); return defaults.HomeDir }

// DocPrefix returns the documentation bundle filename prefix (e.g., "prep-doc").
func DocPrefix() string { load(); return defaults.DocPrefix }

// DocSiteURL returns the public documentation site, used in warnings when no
// local bundle could be installed.
func DocSiteURL() string { load(); return defaults.DocSiteURL }

// DocServers returns the default ordered mirror list for doc bundles.
func DocServers() []string { load(); return append([]string(nil), defaults.DocServers...) }

// GoModule returns the Go module path. Used by release scripts, not at runtime.
func GoModule() string { load(); return defaults.GoModule }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "PREP_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + suffix
}
