// Package cli defines the command surface: the root prepare workflow plus
// the version and doctor subcommands. Commands wire concrete collaborators
// (git, HTTP, the terminal) into the engines and stay thin themselves.
package cli
