// Package config wires user-level settings through Viper: an optional
// ~/.prep/config.yaml overlaid with PREP_* environment variables. Everything
// has a built-in default; a missing config file is not an error.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/preplabs/prep/internal/branding"
	"github.com/preplabs/prep/internal/prompt"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyDocServers        = "doc.servers"
	KeyPromptMaxRetries  = "prompt.max_retries"
	KeyAutoConfirmBudget = "prompt.auto_confirm_budget"
)

// Dir returns the path to the config directory (~/.prep/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.prep/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyDocServers, branding.DocServers())
	viper.SetDefault(KeyPromptMaxRetries, prompt.DefaultMaxRetries)
	viper.SetDefault(KeyAutoConfirmBudget, prompt.DefaultAutoConfirmBudget)

	// Ignore error if the config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// DocServers returns the ordered documentation mirror list.
func DocServers() []string {
	return viper.GetStringSlice(KeyDocServers)
}

// PromptMaxRetries returns the invalid-answer bound per question.
func PromptMaxRetries() int {
	return viper.GetInt(KeyPromptMaxRetries)
}

// AutoConfirmBudget returns the total auto-confirmation bound per run.
func AutoConfirmBudget() int {
	return viper.GetInt(KeyAutoConfirmBudget)
}
