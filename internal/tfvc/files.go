package tfvc

import (
	"os"
	"strconv"
	"strings"

	"github.com/almtools/tfbridge/internal/tool"
)

// RenameCommand renames or moves a committed item:
//
//	rename <oldName> <newName>
//
// Success produces no output of interest; any stderr text is the error.
type RenameCommand struct {
	cx      ServerContext
	oldName string
	newName string
}

func NewRenameCommand(cx ServerContext, oldName, newName string) (*RenameCommand, error) {
	if err := tool.CheckNotEmpty(oldName, "oldName"); err != nil {
		return nil, err
	}
	if err := tool.CheckNotEmpty(newName, "newName"); err != nil {
		return nil, err
	}
	return &RenameCommand{cx: cx, oldName: oldName, newName: newName}, nil
}

func (c *RenameCommand) Args() *tool.ArgumentBuilder {
	return newBuilder("rename", c.cx).
		Add(c.oldName).
		Add(c.newName)
}

func (c *RenameCommand) ParseOutput(stdout, stderr string) (string, error) {
	if err := checkStderr(stderr); err != nil {
		return "", err
	}
	return c.newName, nil
}

const noPendingChangesToUndo = "No pending changes were found for "

// UndoCommand reverts pending local changes:
//
//	undo <file>...
//
// Output mirrors the get command's folder-header format:
//
//	/home/user/project:
//	Undoing edit: readme.txt
type UndoCommand struct {
	cx    ServerContext
	files []string
}

func NewUndoCommand(cx ServerContext, files []string) (*UndoCommand, error) {
	if len(files) == 0 {
		return nil, tool.CheckNotEmpty("", "files")
	}
	for _, f := range files {
		if err := tool.CheckNotEmpty(f, "files entry"); err != nil {
			return nil, err
		}
	}
	return &UndoCommand{cx: cx, files: files}, nil
}

func (c *UndoCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("undo", c.cx)
	for _, f := range c.files {
		builder.Add(f)
	}
	return builder
}

func (c *UndoCommand) ParseOutput(stdout, stderr string) ([]string, error) {
	if err := checkStderr(stderr); err != nil {
		return nil, err
	}

	var undone []string
	folder := ""
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, noPendingChangesToUndo):
			continue
		case isFolderHeader(trimmed):
			folder = strings.TrimSuffix(trimmed, ":")
		case strings.HasPrefix(trimmed, "Undoing "):
			name := trimmed
			if idx := strings.Index(trimmed, ": "); idx >= 0 {
				name = trimmed[idx+2:]
			}
			undone = append(undone, joinItem(folder, name))
		}
	}
	return undone, nil
}

// AddCommand schedules unversioned files for addition:
//
//	add <file>...
//
// Output lists the scheduled items under folder headers, followed by a
// summary line ("1 item(s) added") that is skipped.
type AddCommand struct {
	cx    ServerContext
	files []string
}

func NewAddCommand(cx ServerContext, files []string) (*AddCommand, error) {
	if len(files) == 0 {
		return nil, tool.CheckNotEmpty("", "files")
	}
	for _, f := range files {
		if err := tool.CheckNotEmpty(f, "files entry"); err != nil {
			return nil, err
		}
	}
	return &AddCommand{cx: cx, files: files}, nil
}

func (c *AddCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("add", c.cx)
	for _, f := range c.files {
		builder.Add(f)
	}
	return builder
}

func (c *AddCommand) ParseOutput(stdout, stderr string) ([]string, error) {
	if err := checkStderr(stderr); err != nil {
		return nil, err
	}

	var added []string
	folder := ""
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.Contains(trimmed, "item(s)"):
			continue
		case isFolderHeader(trimmed):
			folder = strings.TrimSuffix(trimmed, ":")
		default:
			added = append(added, joinItem(folder, trimmed))
		}
	}
	return added, nil
}

// DownloadCommand fetches the contents of an item at a version and writes
// them to a destination file, truncating anything already there:
//
//	print <itemSpec> [/version:<n>]
//
// The file write is part of the command's effect, so a write failure is a
// parse failure, not a separate error channel. The result is the
// destination path.
type DownloadCommand struct {
	cx          ServerContext
	itemSpec    string
	version     int
	destination string
}

func NewDownloadCommand(cx ServerContext, itemSpec string, version int, destination string) (*DownloadCommand, error) {
	if err := tool.CheckNotEmpty(itemSpec, "itemSpec"); err != nil {
		return nil, err
	}
	if err := tool.CheckNotEmpty(destination, "destination"); err != nil {
		return nil, err
	}
	return &DownloadCommand{cx: cx, itemSpec: itemSpec, version: version, destination: destination}, nil
}

func (c *DownloadCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("print", c.cx).Add(c.itemSpec)
	if c.version > 0 {
		builder.AddSwitch("version", strconv.Itoa(c.version))
	}
	return builder
}

func (c *DownloadCommand) ParseOutput(stdout, stderr string) (string, error) {
	if err := checkStderr(stderr); err != nil {
		return "", err
	}
	if err := os.WriteFile(c.destination, []byte(stdout), 0o644); err != nil {
		return "", &tool.ParseError{Output: stdout, Err: err}
	}
	return c.destination, nil
}
