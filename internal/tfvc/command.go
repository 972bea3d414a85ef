// Package tfvc implements the individual commands of the external TFVC
// command-line client: argument construction on the way down, line-oriented
// output parsing on the way back up. Commands form a closed set of typed
// structs sharing the same two-method contract; sequencing of commands into
// higher-level operations lives in internal/client.
package tfvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/almtools/tfbridge/internal/tool"
)

// Command is the contract every operation implements. Args returns the full
// argument vector for the invocation; ParseOutput turns the captured output
// into the typed result. Constructors validate their parameters eagerly, so
// both methods operate on known-good input.
type Command[T any] interface {
	Args() *tool.ArgumentBuilder
	ParseOutput(stdout, stderr string) (T, error)
}

// Run executes a command through the runner and parses its output. Exactly
// one invocation per command: a command value is created per call, run once,
// and discarded.
func Run[T any](ctx context.Context, r tool.Runner, cmd Command[T]) (T, error) {
	var zero T

	builder := cmd.Args()
	result, err := r.Run(ctx, builder.Build(), "")
	if err != nil {
		return zero, &tool.InvocationError{Err: err}
	}
	if result.ExitCode != 0 {
		return zero, &tool.InvocationError{Stderr: result.Stderr, ExitCode: result.ExitCode}
	}

	return cmd.ParseOutput(result.Stdout, result.Stderr)
}

// newBuilder seeds a builder with the sub-command token and the standard
// context switches shared by every command.
func newBuilder(subcommand string, cx ServerContext) *tool.ArgumentBuilder {
	builder := tool.NewArgumentBuilder(subcommand)
	builder.AddSwitch("noprompt", "")
	if cx.Collection != "" {
		builder.AddSwitch("collection", cx.Collection)
	}
	if cx.Login != "" {
		builder.AddSecretSwitch("login", cx.Login)
	}
	return builder
}

// checkStderr converts tool-reported errors into an InvocationError carrying
// the raw text. Every ParseOutput calls this before touching stdout.
func checkStderr(stderr string) error {
	if strings.TrimSpace(stderr) != "" {
		return &tool.InvocationError{Stderr: stderr}
	}
	return nil
}

// splitLines splits stdout into trimmed-right lines, dropping a trailing
// empty line so parsers can iterate without special-casing the final "\n".
func splitLines(stdout string) []string {
	lines := strings.Split(strings.ReplaceAll(stdout, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// parseChangeTypes splits a "rename, edit" style list into the type set.
func parseChangeTypes(s string) []ChangeType {
	parts := strings.Split(s, ",")
	types := make([]ChangeType, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		types = append(types, ChangeType(strings.ToLower(p)))
	}
	return types
}

// joinItem joins a folder-header path with an item name from the tool's
// "folder:" / "action item" output blocks.
func joinItem(folder, name string) string {
	if folder == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(folder, "/"), name)
}
