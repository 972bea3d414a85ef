package tfvc

import (
	"strings"

	"github.com/almtools/tfbridge/internal/tool"
)

// FindWorkspaceCommand locates the workspace that maps a local directory:
//
//	workfold <localPath>
//
// Typical output:
//
//	===============================================================================
//	Workspace : MyWorkspace (John Smith)
//	Collection: http://server:8080/tfs/
//	 $/TeamProject: /home/user/project
//
// An output without a Workspace line parses to the zero Workspace; the
// caller decides whether that is an error.
type FindWorkspaceCommand struct {
	cx        ServerContext
	localPath string
}

func NewFindWorkspaceCommand(cx ServerContext, localPath string) (*FindWorkspaceCommand, error) {
	if err := tool.CheckNotEmpty(localPath, "localPath"); err != nil {
		return nil, err
	}
	return &FindWorkspaceCommand{cx: cx, localPath: localPath}, nil
}

func (c *FindWorkspaceCommand) Args() *tool.ArgumentBuilder {
	return newBuilder("workfold", c.cx).Add(c.localPath)
}

func (c *FindWorkspaceCommand) ParseOutput(stdout, stderr string) (Workspace, error) {
	if err := checkStderr(stderr); err != nil {
		return Workspace{}, err
	}

	var ws Workspace
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Workspace"):
			value := valueAfterColon(trimmed)
			// Strip the owner suffix: "MyWorkspace (John Smith)"
			if idx := strings.LastIndex(value, " ("); idx >= 0 && strings.HasSuffix(value, ")") {
				ws.Owner = strings.TrimSuffix(value[idx+2:], ")")
				value = value[:idx]
			}
			ws.Name = value
		case strings.HasPrefix(trimmed, "Collection"):
			ws.Collection = valueAfterColon(trimmed)
		case strings.HasPrefix(trimmed, "$/"):
			if m, ok := parseMappingLine(trimmed); ok {
				ws.Mappings = append(ws.Mappings, m)
			}
		}
	}
	return ws, nil
}

// GetWorkspaceCommand fetches the full definition of a workspace by name:
//
//	workspaces <name> /format:detailed
type GetWorkspaceCommand struct {
	cx   ServerContext
	name string
}

func NewGetWorkspaceCommand(cx ServerContext, name string) (*GetWorkspaceCommand, error) {
	if err := tool.CheckNotEmpty(name, "name"); err != nil {
		return nil, err
	}
	return &GetWorkspaceCommand{cx: cx, name: name}, nil
}

func (c *GetWorkspaceCommand) Args() *tool.ArgumentBuilder {
	return newBuilder("workspaces", c.cx).
		Add(c.name).
		AddSwitch("format", "detailed")
}

func (c *GetWorkspaceCommand) ParseOutput(stdout, stderr string) (Workspace, error) {
	if err := checkStderr(stderr); err != nil {
		return Workspace{}, err
	}

	var ws Workspace
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Workspace"):
			ws.Name = valueAfterColon(trimmed)
		case strings.HasPrefix(trimmed, "Owner"):
			ws.Owner = valueAfterColon(trimmed)
		case strings.HasPrefix(trimmed, "Computer"):
			ws.Computer = valueAfterColon(trimmed)
		case strings.HasPrefix(trimmed, "Comment"):
			ws.Comment = valueAfterColon(trimmed)
		case strings.HasPrefix(trimmed, "Collection"):
			ws.Collection = valueAfterColon(trimmed)
		case strings.HasPrefix(trimmed, "$/"):
			if m, ok := parseMappingLine(trimmed); ok {
				ws.Mappings = append(ws.Mappings, m)
			}
		}
	}

	if ws.Name == "" {
		return Workspace{}, &tool.ParseError{Output: stdout}
	}
	return ws, nil
}

// UpdateWorkspaceCommand updates the name and comment of a workspace:
//
//	workspace <name> [/newname:<name>] [/comment:<comment>]
//
// Mapping changes go through UpdateWorkspaceMappingCommand instead.
type UpdateWorkspaceCommand struct {
	cx      ServerContext
	name    string
	newName string
	comment string
}

func NewUpdateWorkspaceCommand(cx ServerContext, name, newName, comment string) (*UpdateWorkspaceCommand, error) {
	if err := tool.CheckNotEmpty(name, "name"); err != nil {
		return nil, err
	}
	return &UpdateWorkspaceCommand{cx: cx, name: name, newName: newName, comment: comment}, nil
}

func (c *UpdateWorkspaceCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("workspace", c.cx).Add(c.name)
	if c.newName != "" && c.newName != c.name {
		builder.AddSwitch("newname", c.newName)
	}
	if c.comment != "" {
		builder.AddSwitch("comment", c.comment)
	}
	return builder
}

func (c *UpdateWorkspaceCommand) ParseOutput(stdout, stderr string) (string, error) {
	if err := checkStderr(stderr); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// UpdateWorkspaceMappingCommand adds, changes or removes a single
// working-folder mapping:
//
//	workfold <serverPath> [<localPath>] /workspace:<name> /map|/unmap
//
// Each invocation is atomic from the tool's perspective; the orchestration
// layer issues one command per mapping, never a batch.
type UpdateWorkspaceMappingCommand struct {
	cx        ServerContext
	workspace string
	mapping   Mapping
	remove    bool
}

func NewUpdateWorkspaceMappingCommand(cx ServerContext, workspace string, mapping Mapping, remove bool) (*UpdateWorkspaceMappingCommand, error) {
	if err := tool.CheckNotEmpty(workspace, "workspace"); err != nil {
		return nil, err
	}
	if err := tool.CheckNotEmpty(mapping.ServerPath, "mapping.ServerPath"); err != nil {
		return nil, err
	}
	if !remove {
		if err := tool.CheckNotEmpty(mapping.LocalPath, "mapping.LocalPath"); err != nil {
			return nil, err
		}
	}
	return &UpdateWorkspaceMappingCommand{cx: cx, workspace: workspace, mapping: mapping, remove: remove}, nil
}

func (c *UpdateWorkspaceMappingCommand) Args() *tool.ArgumentBuilder {
	builder := newBuilder("workfold", c.cx).Add(c.mapping.ServerPath)
	if c.remove {
		builder.AddSwitch("workspace", c.workspace)
		builder.AddSwitch("unmap", "")
		return builder
	}
	builder.Add(c.mapping.LocalPath)
	builder.AddSwitch("workspace", c.workspace)
	builder.AddSwitch("map", "")
	return builder
}

func (c *UpdateWorkspaceMappingCommand) ParseOutput(stdout, stderr string) (string, error) {
	if err := checkStderr(stderr); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// GetLocalPathCommand maps a server path to the local path inside a
// workspace:
//
//	resolvePath <serverPath> /workspace:<name>
//
// Output is the local path on a single line.
type GetLocalPathCommand struct {
	cx         ServerContext
	serverPath string
	workspace  string
}

func NewGetLocalPathCommand(cx ServerContext, serverPath, workspace string) (*GetLocalPathCommand, error) {
	if err := tool.CheckNotEmpty(serverPath, "serverPath"); err != nil {
		return nil, err
	}
	if err := tool.CheckNotEmpty(workspace, "workspace"); err != nil {
		return nil, err
	}
	return &GetLocalPathCommand{cx: cx, serverPath: serverPath, workspace: workspace}, nil
}

func (c *GetLocalPathCommand) Args() *tool.ArgumentBuilder {
	return newBuilder("resolvePath", c.cx).
		Add(c.serverPath).
		AddSwitch("workspace", c.workspace)
}

func (c *GetLocalPathCommand) ParseOutput(stdout, stderr string) (string, error) {
	if err := checkStderr(stderr); err != nil {
		return "", err
	}
	path := strings.TrimSpace(stdout)
	if path == "" {
		return "", &tool.ParseError{Output: stdout}
	}
	return path, nil
}

func valueAfterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}

func parseMappingLine(line string) (Mapping, bool) {
	idx := strings.Index(line, ": ")
	if idx < 0 {
		return Mapping{}, false
	}
	return Mapping{
		ServerPath: strings.TrimSpace(line[:idx]),
		LocalPath:  strings.TrimSpace(line[idx+2:]),
	}, true
}
