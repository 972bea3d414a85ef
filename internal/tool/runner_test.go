package tool

import (
	"context"
	"strings"
	"testing"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	r := &ExecRunner{ToolPath: "/bin/sh"}

	result, err := r.Run(context.Background(), []string{"-c", "echo out; echo err 1>&2"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "out")
	}
	if strings.TrimSpace(result.Stderr) != "err" {
		t.Errorf("Stderr = %q, want %q", result.Stderr, "err")
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	r := &ExecRunner{ToolPath: "/bin/sh"}

	result, err := r.Run(context.Background(), []string{"-c", "echo failed 1>&2; exit 3"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if strings.TrimSpace(result.Stderr) != "failed" {
		t.Errorf("Stderr = %q, want %q", result.Stderr, "failed")
	}
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	r := &ExecRunner{ToolPath: "/nonexistent/binary"}

	_, err := r.Run(context.Background(), []string{"version"}, "")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestExecRunnerCancelledContext(t *testing.T) {
	r := &ExecRunner{ToolPath: "/bin/sh"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, []string{"-c", "sleep 10"}, "")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
