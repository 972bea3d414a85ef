// Package tool runs the external TFVC command-line client and provides the
// argument-vector builder and error types shared by every command. It knows
// nothing about individual sub-commands; those live in internal/tfvc.
package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Result captures one finished tool invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner spawns the external client with an argument vector and captures its
// output. Run blocks for the full lifetime of the process; callers must not
// invoke it from a thread that has to stay responsive. Cancelling the
// context terminates the process, which surfaces as an error.
//
// A non-zero exit is NOT an error at this layer: the Result carries the exit
// code and stderr verbatim and the command layer decides what it means.
type Runner interface {
	Run(ctx context.Context, args []string, dir string) (Result, error)
}

// ExecRunner runs the client binary via os/exec.
type ExecRunner struct {
	// ToolPath is the client executable, e.g. "tf".
	ToolPath string
}

// Run spawns the client and waits for it to finish. There is no retry and
// no timeout here; both are the caller's policy.
func (r *ExecRunner) Run(ctx context.Context, args []string, dir string) (Result, error) {
	cmd := exec.CommandContext(ctx, r.ToolPath, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// Spawn failure or killed by context cancellation.
		return result, fmt.Errorf("failed to run %s: %w", r.ToolPath, err)
	}

	return result, nil
}
