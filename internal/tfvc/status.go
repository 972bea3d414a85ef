package tfvc

import (
	"strconv"
	"strings"

	"github.com/almtools/tfbridge/internal/tool"
)

// noPendingChanges is printed instead of a change list when the workspace
// is clean.
const noPendingChanges = "There are no pending changes."

// StatusCommand lists pending changes under a path:
//
//	status <itemPath> /format:detailed /recursive
//
// Output is one block per pending change, blocks separated by blank lines:
//
//	$/tfsTest_01/readme.txt;C19
//	  User:        John Smith
//	  Change:      rename, edit
//	  Workspace:   MyWorkspace
//	  Local item:  /home/user/tfs/readme.txt
//	  Source item: $/tfsTest_01/readme2.txt
type StatusCommand struct {
	cx       ServerContext
	itemPath string
}

func NewStatusCommand(cx ServerContext, itemPath string) (*StatusCommand, error) {
	if err := tool.CheckNotEmpty(itemPath, "itemPath"); err != nil {
		return nil, err
	}
	return &StatusCommand{cx: cx, itemPath: itemPath}, nil
}

func (c *StatusCommand) Args() *tool.ArgumentBuilder {
	return newBuilder("status", c.cx).
		Add(c.itemPath).
		AddSwitch("format", "detailed").
		AddSwitch("recursive", "")
}

func (c *StatusCommand) ParseOutput(stdout, stderr string) ([]PendingChange, error) {
	if err := checkStderr(stderr); err != nil {
		return nil, err
	}

	var changes []PendingChange
	var current *PendingChange

	flush := func() {
		if current != nil {
			changes = append(changes, *current)
			current = nil
		}
	}

	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || trimmed == noPendingChanges:
			flush()
		case strings.HasPrefix(trimmed, "$/"):
			flush()
			pc, err := parsePendingChangeHeader(trimmed)
			if err != nil {
				return nil, err
			}
			current = &pc
		case current != nil:
			applyPendingChangeField(current, trimmed)
		}
	}
	flush()

	return changes, nil
}

// parsePendingChangeHeader parses "$/project/file.txt;C19".
func parsePendingChangeHeader(line string) (PendingChange, error) {
	pc := PendingChange{ServerItem: line}
	idx := strings.LastIndex(line, ";C")
	if idx < 0 {
		return pc, nil
	}
	version, err := strconv.Atoi(line[idx+2:])
	if err != nil {
		return PendingChange{}, &tool.ParseError{Output: line, Err: err}
	}
	pc.ServerItem = line[:idx]
	pc.Version = version
	return pc, nil
}

func applyPendingChangeField(pc *PendingChange, line string) {
	switch {
	case strings.HasPrefix(line, "User:"):
		pc.Owner = valueAfterColon(line)
	case strings.HasPrefix(line, "Change:"):
		pc.ChangeTypes = parseChangeTypes(valueAfterColon(line))
	case strings.HasPrefix(line, "Workspace:"):
		pc.Workspace = valueAfterColon(line)
	case strings.HasPrefix(line, "Local item:"):
		pc.LocalItem = valueAfterColon(line)
	case strings.HasPrefix(line, "Source item:"):
		pc.SourceItem = valueAfterColon(line)
	}
}
