// Package resolve drives a conflict resolution session: it holds the table
// of discovered conflicts, applies batch resolutions through the client, and
// tracks each conflict until it reaches a terminal state. The session makes
// no assumptions about who drives it — a dialog, a CLI loop, or a batch
// caller all work over the returned entry snapshots.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/almtools/tfbridge/internal/client"
	"github.com/almtools/tfbridge/internal/tfvc"
)

// ErrSessionClosed is returned by resolution operations after the session
// has been finalized with ProcessSkipped.
var ErrSessionClosed = errors.New("resolution session is closed")

// State is the lifecycle state of one conflict entry. Pending is the only
// non-terminal state; by the time a session ends every entry is terminal.
type State int

const (
	Pending State = iota
	AcceptedTheirs
	AcceptedYours
	Merged
	Skipped
	Errored
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case AcceptedTheirs:
		return "accepted theirs"
	case AcceptedYours:
		return "accepted yours"
	case Merged:
		return "merged"
	case Skipped:
		return "skipped"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// Entry is one conflict and its resolution outcome. Err is set only in the
// Errored state.
type Entry struct {
	Conflict tfvc.Conflict
	State    State
	Err      error
}

// Session is one resolution pass over a fixed conflict set. Entries are
// owned exclusively by the session and mutated only through its operations.
type Session struct {
	id     string
	client *client.Client

	mu      sync.Mutex
	entries []Entry
	closed  bool
}

// NewSession starts a resolution session over the discovered conflicts.
func NewSession(c *client.Client, conflicts []tfvc.Conflict) *Session {
	entries := make([]Entry, len(conflicts))
	for i, conflict := range conflicts {
		entries[i] = Entry{Conflict: conflict, State: Pending}
	}
	return &Session{
		id:      uuid.New().String()[:8],
		client:  c,
		entries: entries,
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Entries returns a snapshot of the conflict table in display order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Entry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot
}

// AcceptTheirs resolves the selected conflicts with the server's version.
func (s *Session) AcceptTheirs(ctx context.Context, selection []int) ([]Entry, error) {
	return s.apply(ctx, selection, tfvc.TakeTheirs, AcceptedTheirs)
}

// AcceptYours resolves the selected conflicts with the local version.
func (s *Session) AcceptYours(ctx context.Context, selection []int) ([]Entry, error) {
	return s.apply(ctx, selection, tfvc.KeepYours, AcceptedYours)
}

// Merge auto-merges the selected conflicts.
func (s *Session) Merge(ctx context.Context, selection []int) ([]Entry, error) {
	return s.apply(ctx, selection, tfvc.AutoMerge, Merged)
}

// apply runs one resolve batch over the pending entries in the selection.
// Already-terminal entries are skipped without re-executing anything; an
// empty effective selection issues no command at all. A tool failure marks
// the addressed entries Errored but does not abort the session — remaining
// entries stay resolvable.
func (s *Session) apply(ctx context.Context, selection []int, resolveType tfvc.AutoResolveType, success State) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.snapshotLocked(), ErrSessionClosed
	}

	var indices []int
	var paths []string
	for _, idx := range selection {
		if idx < 0 || idx >= len(s.entries) {
			continue
		}
		if s.entries[idx].State != Pending {
			continue
		}
		indices = append(indices, idx)
		paths = append(paths, s.entries[idx].Conflict.LocalPath)
	}

	if len(paths) == 0 {
		return s.snapshotLocked(), nil
	}

	resolutions, err := s.client.ResolveConflictsByPath(ctx, paths, resolveType)
	if err != nil {
		for _, idx := range indices {
			s.entries[idx].State = Errored
			s.entries[idx].Err = err
		}
		fmt.Printf("[resolve] session %s: %s batch failed: %v\n", s.id, resolveType, err)
		return s.snapshotLocked(), nil
	}

	// Map the tool's per-item outcomes back onto the addressed entries.
	// Entries the tool did not report stay pending.
	for _, idx := range indices {
		for _, resolution := range resolutions {
			if tfvc.SameFilePath(resolution.LocalPath, s.entries[idx].Conflict.LocalPath) {
				s.entries[idx].State = success
				break
			}
		}
	}

	return s.snapshotLocked(), nil
}

// ProcessSkipped finalizes the session: every conflict still pending is
// forced to Skipped, so no entry is ever silently lost. Further resolution
// operations return ErrSessionClosed.
func (s *Session) ProcessSkipped() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].State == Pending {
			s.entries[i].State = Skipped
		}
	}
	s.closed = true
	return s.snapshotLocked()
}

// Done reports whether every entry has reached a terminal state.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.State == Pending {
			return false
		}
	}
	return true
}

// FirstError returns the first errored entry's message in display order,
// for surfacing as the session's validation error.
func (s *Session) FirstError() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.State == Errored && e.Err != nil {
			return e.Err.Error(), true
		}
	}
	return "", false
}

func (s *Session) snapshotLocked() []Entry {
	snapshot := make([]Entry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot
}
