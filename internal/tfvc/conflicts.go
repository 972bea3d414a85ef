package tfvc

import (
	"regexp"
	"strings"

	"github.com/almtools/tfbridge/internal/tool"
)

// Conflict classification messages appended by the tool after the item path.
const (
	contentConflictMessage = "The item content has changed"
	renameConflictMessage  = "The item name has changed"
	bothConflictMessage    = "The source and target both have changes"
)

// FindConflictsCommand discovers conflicts under a root without resolving
// anything:
//
//	resolve <root> /recursive /preview
//
// Output is one line per conflicted item:
//
//	/home/user/project/readme.txt: The item content has changed
//	/home/user/project/foo.txt: The item name has changed
//	/home/user/project/bar.txt: The source and target both have changes
//
// Lines that do not match a known classification are informational noise
// from the tool and are skipped.
type FindConflictsCommand struct {
	cx   ServerContext
	root string
}

func NewFindConflictsCommand(cx ServerContext, root string) (*FindConflictsCommand, error) {
	if err := tool.CheckNotEmpty(root, "root"); err != nil {
		return nil, err
	}
	return &FindConflictsCommand{cx: cx, root: root}, nil
}

func (c *FindConflictsCommand) Args() *tool.ArgumentBuilder {
	return newBuilder("resolve", c.cx).
		Add(c.root).
		AddSwitch("recursive", "").
		AddSwitch("preview", "")
}

func (c *FindConflictsCommand) ParseOutput(stdout, stderr string) (ConflictResults, error) {
	if err := checkStderr(stderr); err != nil {
		return ConflictResults{}, err
	}

	var results ConflictResults
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		idx := strings.LastIndex(trimmed, ": ")
		if idx < 0 {
			continue
		}
		path := trimmed[:idx]
		switch trimmed[idx+2:] {
		case contentConflictMessage:
			results.Content = append(results.Content, path)
		case renameConflictMessage:
			results.Rename = append(results.Rename, path)
		case bothConflictMessage:
			results.Both = append(results.Both, path)
		}
	}
	return results, nil
}

var resolvedLinePattern = regexp.MustCompile(`^Resolved (.+) as (\w+)$`)

// ResolveConflictsCommand applies an automatic resolution to a list of
// conflicted local paths:
//
//	resolve <path>... /auto:<type>
//
// Output reports the per-item outcome:
//
//	Resolved /home/user/project/readme.txt as KeepYours
type ResolveConflictsCommand struct {
	cx          ServerContext
	localPaths  []string
	resolveType AutoResolveType
}

func NewResolveConflictsCommand(cx ServerContext, localPaths []string, resolveType AutoResolveType) (*ResolveConflictsCommand, error) {
	if len(localPaths) == 0 {
		return nil, tool.CheckNotEmpty("", "localPaths")
	}
	for _, p := range localPaths {
		if err := tool.CheckNotEmpty(p, "localPaths entry"); err != nil {
			return nil, err
		}
	}
	if err := tool.CheckNotEmpty(string(resolveType), "resolveType"); err != nil {
		return nil, err
	}
	return &ResolveConflictsCommand{cx: cx, localPaths: localPaths, resolveType: resolveType}, nil
}

func (c *ResolveConflictsCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("resolve", c.cx)
	for _, p := range c.localPaths {
		builder.Add(p)
	}
	builder.AddSwitch("auto", string(c.resolveType))
	return builder
}

func (c *ResolveConflictsCommand) ParseOutput(stdout, stderr string) ([]Resolution, error) {
	if err := checkStderr(stderr); err != nil {
		return nil, err
	}

	var resolutions []Resolution
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		match := resolvedLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		resolutions = append(resolutions, Resolution{LocalPath: match[1], Outcome: match[2]})
	}
	return resolutions, nil
}
