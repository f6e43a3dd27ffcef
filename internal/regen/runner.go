package regen

import (
	"fmt"
	"os/exec"
)

// ExecRunner runs generation tools as external processes.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run implements Runner.
func (ExecRunner) Run(dir, tool string) error {
	cmd := exec.Command(tool)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", tool, err, string(output))
	}
	return nil
}
