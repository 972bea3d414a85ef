package tfvc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/almtools/tfbridge/internal/tool"
)

// HistoryCommand queries changeset history for an item:
//
//	history <itemPath> /format:detailed [/version:<spec>] [/stopAfter:<n>]
//	        [/recursive] [/user:<name>] [/itemmode]
//
// A stopAfter of -1 omits the switch entirely, which the tool treats as
// unbounded. Results come back newest-first, one block per changeset,
// blocks separated by a dashed line:
//
//	Changeset: 20
//	User: jason
//	Date: 2016-06-07T11:18:18.790-0400
//
//	Comment:
//	  renamed the readme
//
//	Items:
//	  rename $/tfsTest_01/readme2.txt
//	-------------------------------------------------------------------------
type HistoryCommand struct {
	cx        ServerContext
	itemPath  string
	version   string
	stopAfter int
	recursive bool
	user      string
	itemMode  bool
}

func NewHistoryCommand(cx ServerContext, itemPath, version string, stopAfter int, recursive bool, user string, itemMode bool) (*HistoryCommand, error) {
	if err := tool.CheckNotEmpty(itemPath, "itemPath"); err != nil {
		return nil, err
	}
	return &HistoryCommand{
		cx:        cx,
		itemPath:  itemPath,
		version:   version,
		stopAfter: stopAfter,
		recursive: recursive,
		user:      user,
		itemMode:  itemMode,
	}, nil
}

func (c *HistoryCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("history", c.cx).
		Add(c.itemPath).
		AddSwitch("format", "detailed")
	if c.version != "" {
		builder.AddSwitch("version", c.version)
	}
	if c.stopAfter > 0 {
		builder.AddSwitch("stopAfter", strconv.Itoa(c.stopAfter))
	}
	if c.recursive {
		builder.AddSwitch("recursive", "")
	}
	if c.user != "" {
		builder.AddSwitch("user", c.user)
	}
	if c.itemMode {
		builder.AddSwitch("itemmode", "")
	}
	return builder
}

func (c *HistoryCommand) ParseOutput(stdout, stderr string) ([]ChangeSet, error) {
	if err := checkStderr(stderr); err != nil {
		return nil, err
	}

	var changeSets []ChangeSet
	for _, block := range splitHistoryBlocks(stdout) {
		cs, err := parseChangeSetBlock(block)
		if err != nil {
			return nil, err
		}
		changeSets = append(changeSets, cs)
	}
	return changeSets, nil
}

// splitHistoryBlocks splits stdout on separator lines made of dashes.
func splitHistoryBlocks(stdout string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range splitLines(stdout) {
		if isSeparatorLine(line) {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if r != '-' {
			return false
		}
	}
	return true
}

func parseChangeSetBlock(lines []string) (ChangeSet, error) {
	var cs ChangeSet
	var commentLines []string
	section := ""
	seenID := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Changeset:"):
			id, err := strconv.Atoi(valueAfterColon(trimmed))
			if err != nil {
				return ChangeSet{}, &tool.ParseError{Output: line, Err: err}
			}
			cs.ID = id
			seenID = true
		case strings.HasPrefix(trimmed, "User:"):
			cs.Owner = valueAfterColon(trimmed)
		case strings.HasPrefix(trimmed, "Date:"):
			cs.Date = valueAfterColon(trimmed)
		case trimmed == "Comment:":
			section = "comment"
		case trimmed == "Items:":
			section = "items"
		case trimmed == "":
			section = ""
		default:
			switch section {
			case "comment":
				commentLines = append(commentLines, trimmed)
			case "items":
				change, err := parseChangeLine(trimmed)
				if err != nil {
					return ChangeSet{}, err
				}
				cs.Changes = append(cs.Changes, change)
			}
		}
	}

	if !seenID {
		return ChangeSet{}, &tool.ParseError{Output: strings.Join(lines, "\n"), Err: fmt.Errorf("changeset block has no Changeset line")}
	}
	cs.Comment = strings.Join(commentLines, "\n")
	return cs, nil
}

// parseChangeLine parses an item line: "rename, edit $/project/file.txt".
func parseChangeLine(line string) (Change, error) {
	idx := strings.Index(line, " $/")
	if idx < 0 {
		return Change{}, &tool.ParseError{Output: line, Err: fmt.Errorf("item line has no server path")}
	}
	return Change{
		ChangeTypes: parseChangeTypes(line[:idx]),
		ServerItem:  strings.TrimSpace(line[idx+1:]),
	}, nil
}
