package tfvc

import (
	"strings"

	"github.com/almtools/tfbridge/internal/tool"
)

const allUpToDate = "All files are up to date."

// SyncCommand brings a local root up to date with the server:
//
//	get <root> /recursive
//
// Output groups per-file actions under folder headers:
//
//	/home/user/project:
//	Getting readme.txt
//	Replacing foo.txt
//	Deleting old.txt
//
// or just "All files are up to date." when there is nothing to do.
type SyncCommand struct {
	cx        ServerContext
	root      string
	recursive bool
}

func NewSyncCommand(cx ServerContext, root string, recursive bool) (*SyncCommand, error) {
	if err := tool.CheckNotEmpty(root, "root"); err != nil {
		return nil, err
	}
	return &SyncCommand{cx: cx, root: root, recursive: recursive}, nil
}

func (c *SyncCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("get", c.cx).Add(c.root)
	if c.recursive {
		builder.AddSwitch("recursive", "")
	}
	return builder
}

func (c *SyncCommand) ParseOutput(stdout, stderr string) (SyncResults, error) {
	if err := checkStderr(stderr); err != nil {
		return SyncResults{}, err
	}

	var results SyncResults
	folder := ""
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case trimmed == allUpToDate:
			results.UpToDate = true
		case isFolderHeader(trimmed):
			folder = strings.TrimSuffix(trimmed, ":")
		case strings.HasPrefix(trimmed, "Getting "):
			results.NewFiles = append(results.NewFiles, joinItem(folder, strings.TrimPrefix(trimmed, "Getting ")))
		case strings.HasPrefix(trimmed, "Replacing "):
			results.UpdatedFiles = append(results.UpdatedFiles, joinItem(folder, strings.TrimPrefix(trimmed, "Replacing ")))
		case strings.HasPrefix(trimmed, "Deleting "):
			results.DeletedFiles = append(results.DeletedFiles, joinItem(folder, strings.TrimPrefix(trimmed, "Deleting ")))
		}
	}
	return results, nil
}

// isFolderHeader matches the "path:" lines that scope the file actions
// below them. Windows drive-letter paths ("C:") never stand alone, so a
// bare trailing colon is enough.
func isFolderHeader(line string) bool {
	return strings.HasSuffix(line, ":") && len(line) > 1 && !strings.Contains(strings.TrimSuffix(line, ":"), " ")
}
