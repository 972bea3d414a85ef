// Package client sequences individual TFVC commands into the higher-level
// operations the rest of the application works with: workspace lookup and
// update, syncing, history queries, and conflict discovery with rename
// reconstruction. Every operation is synchronous and issues commands one at
// a time; the external client is not safe to invoke concurrently against
// the same workspace.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/almtools/tfbridge/internal/tfvc"
	"github.com/almtools/tfbridge/internal/tool"
)

// defaultHistoryWindow is the bounded first pass of the rename-history
// search. Renames in conflict almost always sit near the top of history, so
// the bounded pass is the common case and the unbounded retry the expensive
// fallback.
const defaultHistoryWindow = 50

// unableToDetermineWorkspace is the client's message when a local path is
// not mapped into any workspace. It is a lookup miss, not a failure.
const unableToDetermineWorkspace = "Unable to determine the workspace"

// Client runs higher-level operations against one server context.
type Client struct {
	runner tool.Runner
	cx     tfvc.ServerContext

	// historyWindow is the stopAfter of the bounded rename-search pass.
	historyWindow int
	// historyCap bounds the "unbounded" second pass. Zero means genuinely
	// unbounded, matching the tool's behavior when stopAfter is omitted.
	historyCap int
}

// Option configures a Client.
type Option func(*Client)

// WithHistoryWindow overrides the bounded rename-search window.
func WithHistoryWindow(n int) Option {
	return func(c *Client) { c.historyWindow = n }
}

// WithHistoryCap puts a hard ceiling on the unbounded rename-search pass.
// Observable behavior is unchanged for histories shorter than the cap.
func WithHistoryCap(n int) Option {
	return func(c *Client) { c.historyCap = n }
}

// New creates a client for a server context.
func New(runner tool.Runner, cx tfvc.ServerContext, opts ...Option) *Client {
	c := &Client{
		runner:        runner,
		cx:            cx,
		historyWindow: defaultHistoryWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WorkspaceName returns the name of the workspace mapping a local project
// root, or the empty string (never an error) when the path is not mapped.
func (c *Client) WorkspaceName(ctx context.Context, projectPath string) (string, error) {
	cmd, err := tfvc.NewFindWorkspaceCommand(c.cx, projectPath)
	if err != nil {
		return "", err
	}
	ws, err := tfvc.Run(ctx, c.runner, cmd)
	if err != nil {
		var invErr *tool.InvocationError
		if errors.As(err, &invErr) && strings.Contains(invErr.Stderr, unableToDetermineWorkspace) {
			return "", nil
		}
		return "", err
	}
	return ws.Name, nil
}

// Workspace determines the workspace name for a project root and fetches
// the fully filled-out definition.
func (c *Client) Workspace(ctx context.Context, projectPath string) (tfvc.Workspace, error) {
	name, err := c.WorkspaceName(ctx, projectPath)
	if err != nil {
		return tfvc.Workspace{}, err
	}
	if name == "" {
		return tfvc.Workspace{}, fmt.Errorf("no workspace maps %s", projectPath)
	}
	return c.WorkspaceByName(ctx, name)
}

// WorkspaceByName fetches the full workspace definition.
func (c *Client) WorkspaceByName(ctx context.Context, name string) (tfvc.Workspace, error) {
	cmd, err := tfvc.NewGetWorkspaceCommand(c.cx, name)
	if err != nil {
		return tfvc.Workspace{}, err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// LocalPath maps a server path to its local path inside a workspace.
func (c *Client) LocalPath(ctx context.Context, serverPath, workspace string) (string, error) {
	cmd, err := tfvc.NewGetLocalPathCommand(c.cx, serverPath, workspace)
	if err != nil {
		return "", err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// UpdateWorkspace applies the difference between two workspace snapshots:
// first one command per mapping to remove, then one per mapping to change,
// then a single command for the name/comment properties. Mapping commands
// are issued sequentially and the operation stops at the first failure,
// leaving the workspace partially updated but internally consistent. This
// does NOT sync the workspace; syncing is a separate, explicit step.
func (c *Client) UpdateWorkspace(ctx context.Context, old, new tfvc.Workspace) error {
	if tfvc.MappingsDiffer(old, new) {
		for _, m := range tfvc.MappingsToRemove(old, new) {
			cmd, err := tfvc.NewUpdateWorkspaceMappingCommand(c.cx, old.Name, m, true)
			if err != nil {
				return err
			}
			if _, err := tfvc.Run(ctx, c.runner, cmd); err != nil {
				return fmt.Errorf("failed to remove mapping %s: %w", m.ServerPath, err)
			}
		}

		for _, m := range tfvc.MappingsToChange(old, new) {
			cmd, err := tfvc.NewUpdateWorkspaceMappingCommand(c.cx, old.Name, m, false)
			if err != nil {
				return err
			}
			if _, err := tfvc.Run(ctx, c.runner, cmd); err != nil {
				return fmt.Errorf("failed to map %s: %w", m.ServerPath, err)
			}
		}
	}

	cmd, err := tfvc.NewUpdateWorkspaceCommand(c.cx, old.Name, new.Name, new.Comment)
	if err != nil {
		return err
	}
	if _, err := tfvc.Run(ctx, c.runner, cmd); err != nil {
		return fmt.Errorf("failed to update workspace %s: %w", old.Name, err)
	}
	return nil
}

// SyncWorkspace gets the latest content under a root path, always
// recursively. Blocks for the full duration; call it from a worker context.
func (c *Client) SyncWorkspace(ctx context.Context, rootPath string) (tfvc.SyncResults, error) {
	cmd, err := tfvc.NewSyncCommand(c.cx, rootPath, true)
	if err != nil {
		return tfvc.SyncResults{}, err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// History queries changeset history for an item, newest-first. A stopAfter
// of -1 queries unbounded history.
func (c *Client) History(ctx context.Context, itemPath, version string, stopAfter int, recursive bool, user string, itemMode bool) ([]tfvc.ChangeSet, error) {
	cmd, err := tfvc.NewHistoryCommand(c.cx, itemPath, version, stopAfter, recursive, user, itemMode)
	if err != nil {
		return nil, err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// LastHistoryEntry returns the most recent changeset touching an item for
// any user. The ok result is false when history is empty; that is not an
// error.
func (c *Client) LastHistoryEntry(ctx context.Context, itemPath string) (tfvc.ChangeSet, bool, error) {
	changeSets, err := c.History(ctx, itemPath, "", 1, false, "", false)
	if err != nil {
		return tfvc.ChangeSet{}, false, err
	}
	if len(changeSets) == 0 {
		return tfvc.ChangeSet{}, false, nil
	}
	return changeSets[0], true, nil
}

// StatusForFile returns the pending change for a single file. The ok result
// is false when the file has no pending change.
func (c *Client) StatusForFile(ctx context.Context, file string) (tfvc.PendingChange, bool, error) {
	changes, err := c.Status(ctx, file)
	if err != nil {
		return tfvc.PendingChange{}, false, err
	}
	if len(changes) == 0 {
		return tfvc.PendingChange{}, false, nil
	}
	return changes[0], true, nil
}

// Status lists pending changes under a path.
func (c *Client) Status(ctx context.Context, itemPath string) ([]tfvc.PendingChange, error) {
	cmd, err := tfvc.NewStatusCommand(c.cx, itemPath)
	if err != nil {
		return nil, err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// UndoLocalFiles reverts the pending changes on the given local files and
// returns the paths that were undone.
func (c *Client) UndoLocalFiles(ctx context.Context, files []string) ([]string, error) {
	cmd, err := tfvc.NewUndoCommand(c.cx, files)
	if err != nil {
		return nil, err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// RenameFile renames a committed item.
func (c *Client) RenameFile(ctx context.Context, oldName, newName string) error {
	cmd, err := tfvc.NewRenameCommand(c.cx, oldName, newName)
	if err != nil {
		return err
	}
	_, err = tfvc.Run(ctx, c.runner, cmd)
	return err
}

// AddFiles schedules unversioned files for addition and returns the
// scheduled paths.
func (c *Client) AddFiles(ctx context.Context, files []string) ([]string, error) {
	cmd, err := tfvc.NewAddCommand(c.cx, files)
	if err != nil {
		return nil, err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// Download writes the contents of an item at a version to a destination
// file and returns the destination path.
func (c *Client) Download(ctx context.Context, itemSpec string, version int, destination string) (string, error) {
	cmd, err := tfvc.NewDownloadCommand(c.cx, itemSpec, version, destination)
	if err != nil {
		return "", err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// ResolveConflictsByPath applies an automatic resolution to conflicted
// local paths and returns the tool's per-item outcomes.
func (c *Client) ResolveConflictsByPath(ctx context.Context, localPaths []string, resolveType tfvc.AutoResolveType) ([]tfvc.Resolution, error) {
	cmd, err := tfvc.NewResolveConflictsCommand(c.cx, localPaths, resolveType)
	if err != nil {
		return nil, err
	}
	return tfvc.Run(ctx, c.runner, cmd)
}

// ResolveConflicts is ResolveConflictsByPath over conflict values.
func (c *Client) ResolveConflicts(ctx context.Context, conflicts []tfvc.Conflict, resolveType tfvc.AutoResolveType) ([]tfvc.Resolution, error) {
	paths := make([]string, 0, len(conflicts))
	for _, conflict := range conflicts {
		paths = append(paths, conflict.LocalPath)
	}
	return c.ResolveConflictsByPath(ctx, paths, resolveType)
}
