package tool

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned when a command is constructed with
// malformed or missing input. It fires before any process is spawned and
// always indicates a caller bug, never a tool failure.
var ErrInvalidArgument = errors.New("invalid argument")

// CheckNotEmpty validates that a required string parameter is non-empty.
func CheckNotEmpty(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, name)
	}
	return nil
}

// InvocationError means the external client reported a failure: it wrote to
// stderr, exited non-zero, or the process could not run at all (including
// context cancellation). The raw stderr text is preserved verbatim for
// display.
type InvocationError struct {
	Stderr   string
	ExitCode int
	Err      error // spawn or cancellation error, if any
}

func (e *InvocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool invocation failed: %v", e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("tool reported an error: %s", strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("tool exited with code %d", e.ExitCode)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ParseError means stdout did not match the expected grammar for a command,
// or writing a command's output to disk failed. It wraps the offending text
// and the underlying cause so a tool/output-format mismatch is never
// silently swallowed.
type ParseError struct {
	Output string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected tool output: %v", e.Err)
	}
	return fmt.Sprintf("unexpected tool output: %q", firstLine(e.Output))
}

func (e *ParseError) Unwrap() error { return e.Err }

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
