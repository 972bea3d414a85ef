package tool

import "strings"

// maskedValue replaces secret switch values when rendering for logs.
const maskedValue = "********"

type switchArg struct {
	name   string
	value  string
	secret bool
}

// ArgumentBuilder accumulates the argument vector for a single tool
// invocation. The external client is order-sensitive for positional
// arguments, so positionals are emitted in insertion order, followed by
// /name:value switches (the client accepts switches in any order among
// themselves, but they must come after the positionals).
//
// A builder is owned by exactly one command and consumed once.
type ArgumentBuilder struct {
	positionals []string
	switches    []switchArg
}

// NewArgumentBuilder creates a builder seeded with the sub-command token.
func NewArgumentBuilder(subcommand string) *ArgumentBuilder {
	return &ArgumentBuilder{positionals: []string{subcommand}}
}

// Add appends a positional argument.
func (b *ArgumentBuilder) Add(value string) *ArgumentBuilder {
	b.positionals = append(b.positionals, value)
	return b
}

// AddSwitch appends a /name:value switch. An empty value renders as /name.
func (b *ArgumentBuilder) AddSwitch(name, value string) *ArgumentBuilder {
	b.switches = append(b.switches, switchArg{name: name, value: value})
	return b
}

// AddSecretSwitch appends a switch whose value is masked by String.
// The real value is still present in Build output.
func (b *ArgumentBuilder) AddSecretSwitch(name, value string) *ArgumentBuilder {
	b.switches = append(b.switches, switchArg{name: name, value: value, secret: true})
	return b
}

// Build renders the final argument vector: positionals first, then switches.
func (b *ArgumentBuilder) Build() []string {
	args := make([]string, 0, len(b.positionals)+len(b.switches))
	args = append(args, b.positionals...)
	for _, s := range b.switches {
		args = append(args, renderSwitch(s, false))
	}
	return args
}

// String renders the argument vector for logging, masking secret values.
func (b *ArgumentBuilder) String() string {
	args := make([]string, 0, len(b.positionals)+len(b.switches))
	args = append(args, b.positionals...)
	for _, s := range b.switches {
		args = append(args, renderSwitch(s, true))
	}
	return strings.Join(args, " ")
}

func renderSwitch(s switchArg, mask bool) string {
	if s.value == "" {
		return "/" + s.name
	}
	value := s.value
	if mask && s.secret {
		value = maskedValue
	}
	return "/" + s.name + ":" + value
}
