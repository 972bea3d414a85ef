package client

import (
	"context"
	"fmt"

	"github.com/almtools/tfbridge/internal/tfvc"
)

// Conflicts discovers the conflicts under a root. Content conflicts come
// straight from the finder's classification. Rename and both conflicts only
// carry the post-rename server name, so each one goes through rename
// reconstruction; entries whose old name cannot be recovered are dropped
// rather than surfaced malformed — the caller should never block on a
// rename the history no longer explains.
func (c *Client) Conflicts(ctx context.Context, root string) ([]tfvc.Conflict, error) {
	cmd, err := tfvc.NewFindConflictsCommand(c.cx, root)
	if err != nil {
		return nil, err
	}
	results, err := tfvc.Run(ctx, c.runner, cmd)
	if err != nil {
		return nil, err
	}

	var conflicts []tfvc.Conflict
	for _, path := range results.Content {
		conflicts = append(conflicts, tfvc.Conflict{LocalPath: path, Type: tfvc.ConflictContent})
	}

	for _, serverName := range results.Rename {
		conflict, found, err := c.findLocalRename(ctx, serverName, root, tfvc.ConflictRename)
		if err != nil {
			return nil, err
		}
		if found {
			conflicts = append(conflicts, conflict)
		} else {
			fmt.Printf("[client] dropping rename conflict %s: old name not found in history\n", serverName)
		}
	}

	for _, serverName := range results.Both {
		conflict, found, err := c.findLocalRename(ctx, serverName, root, tfvc.ConflictBoth)
		if err != nil {
			return nil, err
		}
		if found {
			conflicts = append(conflicts, conflict)
		} else {
			fmt.Printf("[client] dropping both conflict %s: old name not found in history\n", serverName)
		}
	}

	return conflicts, nil
}

// findLocalRename recovers the pre-rename server path and the current local
// path for a rename conflict the finder reported only by server name. The
// history is searched bounded first (the rename usually just happened), then
// unbounded.
func (c *Client) findLocalRename(ctx context.Context, serverName, root string, conflictType tfvc.ConflictType) (tfvc.Conflict, bool, error) {
	conflict, found, err := c.searchChangeSetForRename(ctx, serverName, root, conflictType, c.historyWindow)
	if err != nil || found {
		return conflict, found, err
	}

	// Full-history pass. historyCap of zero omits the stopAfter switch,
	// which can be arbitrarily expensive on deep histories.
	stopAfter := -1
	if c.historyCap > 0 {
		stopAfter = c.historyCap
	}
	return c.searchChangeSetForRename(ctx, serverName, root, conflictType, stopAfter)
}

// searchChangeSetForRename walks history newest-to-oldest looking for the
// changeset that performed the rename; the immediately older changeset's
// first change carries the pre-rename server item. The old name is then
// cross-referenced against current pending changes under root to find the
// corresponding local path.
func (c *Client) searchChangeSetForRename(ctx context.Context, serverName, root string, conflictType tfvc.ConflictType, stopAfter int) (tfvc.Conflict, bool, error) {
	changeSets, err := c.History(ctx, serverName, "", stopAfter, false, "", true)
	if err != nil {
		return tfvc.Conflict{}, false, err
	}

	for index := range changeSets {
		if !changeSetHasChanges(changeSets, index) ||
			!changeSets[index].Changes[0].HasType(tfvc.ChangeRename) {
			continue
		}
		// The entry after the rename holds the old name of the file.
		if !changeSetHasChanges(changeSets, index+1) {
			continue
		}
		oldName := changeSets[index+1].Changes[0].ServerItem

		pending, err := c.Status(ctx, root)
		if err != nil {
			return tfvc.Conflict{}, false, err
		}
		for _, change := range pending {
			if tfvc.SameFilePath(change.SourceItem, oldName) {
				return tfvc.Conflict{
					LocalPath:     change.LocalItem,
					ServerPath:    serverName,
					Type:          conflictType,
					OldServerName: oldName,
				}, true, nil
			}
		}
	}

	return tfvc.Conflict{}, false, nil
}

func changeSetHasChanges(changeSets []tfvc.ChangeSet, index int) bool {
	return index < len(changeSets) && len(changeSets[index].Changes) > 0
}
