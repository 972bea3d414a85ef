package tfvc

import (
	"path/filepath"
	"runtime"
	"strings"
)

// ServerContext carries the connection state for a team project collection.
// It is opaque to this package beyond rendering the standard switches; every
// command passes it through unmodified.
type ServerContext struct {
	// Collection is the collection URL, e.g. "http://server:8080/tfs/".
	Collection string
	// Login is the "user,password" credential pair. Masked in logs.
	Login string
}

// ChangeType is one entry of a pending or committed change's type set.
type ChangeType string

const (
	ChangeAdd      ChangeType = "add"
	ChangeEdit     ChangeType = "edit"
	ChangeRename   ChangeType = "rename"
	ChangeDelete   ChangeType = "delete"
	ChangeUndelete ChangeType = "undelete"
	ChangeBranch   ChangeType = "branch"
	ChangeMerge    ChangeType = "merge"
	ChangeLock     ChangeType = "lock"
)

// Change is a single item change inside a changeset.
type Change struct {
	ServerItem  string
	ChangeTypes []ChangeType
	// SourceItem is the pre-rename path when the tool reports one.
	SourceItem string
}

// HasType reports whether the change's type set contains t.
func (c Change) HasType(t ChangeType) bool {
	for _, ct := range c.ChangeTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ChangeSet is one committed changeset, newest-first in history results.
type ChangeSet struct {
	ID      int
	Owner   string
	Date    string
	Comment string
	Changes []Change
}

// PendingChange is one uncommitted local modification.
type PendingChange struct {
	ServerItem  string
	LocalItem   string
	SourceItem  string
	Version     int
	ChangeTypes []ChangeType
	Workspace   string
	Owner       string
}

// ConflictType classifies a discovered conflict.
type ConflictType int

const (
	ConflictContent ConflictType = iota
	ConflictRename
	ConflictBoth
)

func (t ConflictType) String() string {
	switch t {
	case ConflictContent:
		return "content"
	case ConflictRename:
		return "rename"
	case ConflictBoth:
		return "both"
	}
	return "unknown"
}

// Conflict is a discovered conflict between the local workspace and the
// server. Content conflicts carry only the local path as reported by the
// tool. Rename and both conflicts additionally carry the server path the
// tool reported and the reconstructed pre-rename server name; a rename
// conflict whose old name cannot be reconstructed is never surfaced.
type Conflict struct {
	LocalPath     string
	ServerPath    string
	Type          ConflictType
	OldServerName string
}

// ConflictResults is the raw classification from the conflict finder,
// before rename reconstruction.
type ConflictResults struct {
	Content []string
	Rename  []string
	Both    []string
}

// AutoResolveType selects the tool's automatic resolution mode.
type AutoResolveType string

const (
	TakeTheirs AutoResolveType = "TakeTheirs"
	KeepYours  AutoResolveType = "KeepYours"
	AutoMerge  AutoResolveType = "AutoMerge"
)

// Resolution is the tool's per-item outcome of a resolve invocation.
type Resolution struct {
	LocalPath string
	Outcome   string
}

// Mapping is one working-folder mapping of a workspace.
type Mapping struct {
	ServerPath string
	LocalPath  string
}

// Workspace is a workspace definition: name, comment and the ordered set of
// working-folder mappings.
type Workspace struct {
	Name       string
	Owner      string
	Computer   string
	Comment    string
	Collection string
	Mappings   []Mapping
}

// SyncResults summarizes a get operation.
type SyncResults struct {
	NewFiles     []string
	UpdatedFiles []string
	DeletedFiles []string
	UpToDate     bool
}

// SameFilePath compares two paths the way the local platform does: cleaned,
// separator-normalized, and case-insensitively on Windows. Rename
// reconstruction must not rely on literal string equality.
func SameFilePath(a, b string) bool {
	na := filepath.ToSlash(filepath.Clean(a))
	nb := filepath.ToSlash(filepath.Clean(b))
	if runtime.GOOS == "windows" {
		return strings.EqualFold(na, nb)
	}
	return na == nb
}

// MappingsDiffer reports whether two workspaces have different mapping sets.
func MappingsDiffer(old, new Workspace) bool {
	return len(MappingsToRemove(old, new)) > 0 || len(MappingsToChange(old, new)) > 0
}

// MappingsToRemove returns the old workspace's mappings whose server paths
// no longer appear in the new workspace.
func MappingsToRemove(old, new Workspace) []Mapping {
	var removed []Mapping
	for _, m := range old.Mappings {
		if findMapping(new.Mappings, m.ServerPath) == nil {
			removed = append(removed, m)
		}
	}
	return removed
}

// MappingsToChange returns the new workspace's mappings that are absent from
// the old workspace or mapped to a different local path.
func MappingsToChange(old, new Workspace) []Mapping {
	var changed []Mapping
	for _, m := range new.Mappings {
		existing := findMapping(old.Mappings, m.ServerPath)
		if existing == nil || !SameFilePath(existing.LocalPath, m.LocalPath) {
			changed = append(changed, m)
		}
	}
	return changed
}

func findMapping(mappings []Mapping, serverPath string) *Mapping {
	for i := range mappings {
		if mappings[i].ServerPath == serverPath {
			return &mappings[i]
		}
	}
	return nil
}
