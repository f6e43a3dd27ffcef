package docsync

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PolicyFile is the marker at the tree root remembering the chosen
// documentation-handling mode across runs. Deleting it re-triggers the choice
// prompt. It is the only durable state this tool owns.
const PolicyFile = ".prep-doc-policy"

// Policy is the remembered documentation-handling mode.
type Policy int

const (
	// PolicyUnset means no policy has been chosen yet. It is never written
	// to the marker; an absent marker means unset.
	PolicyUnset Policy = iota
	// PolicyDownload fetches the bundle without asking.
	PolicyDownload
	// PolicyAsk asks per mirror before fetching.
	PolicyAsk
	// PolicyWarn never fetches, only warns.
	PolicyWarn
)

func (p Policy) String() string {
	switch p {
	case PolicyDownload:
		return "download"
	case PolicyAsk:
		return "ask"
	case PolicyWarn:
		return "warn"
	case PolicyUnset:
		return "unset"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses a marker token.
func ParsePolicy(s string) (Policy, error) {
	switch strings.TrimSpace(s) {
	case "download":
		return PolicyDownload, nil
	case "ask":
		return PolicyAsk, nil
	case "warn":
		return PolicyWarn, nil
	}
	return PolicyUnset, fmt.Errorf("unknown documentation policy %q", strings.TrimSpace(s))
}

// PolicyStore loads and saves the policy marker. The engine receives it as an
// explicit dependency; nothing else touches the marker file.
type PolicyStore struct {
	fs   afero.Fs
	path string
}

// NewPolicyStore returns a store for the marker in the tree rooted at root.
func NewPolicyStore(fsys afero.Fs, root string) *PolicyStore {
	return &PolicyStore{fs: fsys, path: filepath.Join(root, PolicyFile)}
}

// Load reads the remembered policy. An absent marker is PolicyUnset with no
// error; an unreadable or unparseable marker is PolicyUnset with the cause.
func (s *PolicyStore) Load() (Policy, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return PolicyUnset, nil
	}
	if err != nil {
		return PolicyUnset, fmt.Errorf("reading policy marker: %w", err)
	}
	p, err := ParsePolicy(string(data))
	if err != nil {
		return PolicyUnset, fmt.Errorf("policy marker %s: %w", s.path, err)
	}
	return p, nil
}

// Save writes the policy token to the marker file.
func (s *PolicyStore) Save(p Policy) error {
	if p == PolicyUnset {
		return fmt.Errorf("refusing to persist unset policy")
	}
	if err := afero.WriteFile(s.fs, s.path, []byte(p.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing policy marker: %w", err)
	}
	return nil
}
