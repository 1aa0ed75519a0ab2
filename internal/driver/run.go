package driver

import (
	"fmt"
	"os"
	"os/exec"
)

// Run builds entryFile into a temporary directory and executes the
// result, streaming its stdio straight through (spec.md §4.7). The
// returned exit code is the executed program's own exit code, so `bismut
// run` is transparent to a program that calls `exit` with a specific
// status.
func Run(entryFile string, opts BuildOptions, cfg *Config, args []string) (int, *BuildResult, error) {
	tmpDir, err := os.MkdirTemp("", "bismut-run-")
	if err != nil {
		return 1, nil, fmt.Errorf("driver: create temp build dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	res, err := buildInto(entryFile, opts, cfg, tmpDir)
	if err != nil {
		return 1, res, err
	}
	if res.BinaryPath == "" {
		return 1, res, nil
	}

	cmd := exec.Command(res.BinaryPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), res, nil
		}
		return 1, res, fmt.Errorf("driver: run %s: %w", res.BinaryPath, err)
	}
	return 0, res, nil
}
