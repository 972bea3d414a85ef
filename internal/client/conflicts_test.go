package client

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/almtools/tfbridge/internal/tfvc"
	"github.com/almtools/tfbridge/internal/tool"
)

const renameConflictOutput = "$/tfsTest_01/readme2.txt: The item name has changed\n"

// History for readme2.txt, newest first. The rename sits two entries down;
// the entry after it carries the pre-rename server item.
const renameHistoryOutput = `Changeset: 22
User: jason

Items:
  edit $/tfsTest_01/readme2.txt
-------------------------------------------------------------------------
Changeset: 21
User: jason

Items:
  edit $/tfsTest_01/readme2.txt
-------------------------------------------------------------------------
Changeset: 20
User: jason

Comment:
  renamed the readme

Items:
  rename $/tfsTest_01/readme2.txt
-------------------------------------------------------------------------
Changeset: 19
User: jason

Items:
  edit $/tfsTest_01/readme.txt
`

const renameStatusOutput = `$/tfsTest_01/readme2.txt;C19
  User:        John Smith
  Change:      rename, edit
  Local item:  /home/user/tfs/readme2.txt
  Source item: $/tfsTest_01/readme.txt
`

func TestConflictsContentOnly(t *testing.T) {
	r := &scriptRunner{handler: func(args []string) (tool.Result, error) {
		return tool.Result{Stdout: "/home/user/tfs/readme.txt: The item content has changed\n"}, nil
	}}
	c := New(r, tfvc.ServerContext{})

	got, err := c.Conflicts(context.Background(), "/home/user/tfs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []tfvc.Conflict{{LocalPath: "/home/user/tfs/readme.txt", Type: tfvc.ConflictContent}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Conflicts() = %+v, want %+v", got, want)
	}

	// Content conflicts never trigger a history search.
	if len(r.calls) != 1 {
		t.Errorf("runner called %d times, want 1", len(r.calls))
	}
}

func TestConflictsRenameReconstruction(t *testing.T) {
	r := &scriptRunner{handler: func(args []string) (tool.Result, error) {
		switch args[0] {
		case "resolve":
			return tool.Result{Stdout: renameConflictOutput}, nil
		case "history":
			return tool.Result{Stdout: renameHistoryOutput}, nil
		case "status":
			return tool.Result{Stdout: renameStatusOutput}, nil
		}
		t.Fatalf("unexpected command %v", args)
		return tool.Result{}, nil
	}}
	c := New(r, tfvc.ServerContext{})

	got, err := c.Conflicts(context.Background(), "/home/user/tfs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []tfvc.Conflict{{
		LocalPath:     "/home/user/tfs/readme2.txt",
		ServerPath:    "$/tfsTest_01/readme2.txt",
		Type:          tfvc.ConflictRename,
		OldServerName: "$/tfsTest_01/readme.txt",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Conflicts() = %+v, want %+v", got, want)
	}
}

func TestConflictsRenameFoundOnlyInFullHistory(t *testing.T) {
	// The bounded window misses the rename; the second pass must retry
	// without a stopAfter bound and succeed.
	boundedOutput := "Changeset: 22\nUser: jason\n\nItems:\n  edit $/tfsTest_01/readme2.txt\n"

	var historyCalls [][]string
	r := &scriptRunner{}
	r.handler = func(args []string) (tool.Result, error) {
		switch args[0] {
		case "resolve":
			return tool.Result{Stdout: renameConflictOutput}, nil
		case "history":
			historyCalls = append(historyCalls, args)
			if hasArg(args, "/stopAfter:50") {
				return tool.Result{Stdout: boundedOutput}, nil
			}
			return tool.Result{Stdout: renameHistoryOutput}, nil
		case "status":
			return tool.Result{Stdout: renameStatusOutput}, nil
		}
		return tool.Result{}, nil
	}
	c := New(r, tfvc.ServerContext{})

	got, err := c.Conflicts(context.Background(), "/home/user/tfs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].OldServerName != "$/tfsTest_01/readme.txt" {
		t.Fatalf("Conflicts() = %+v, want reconstructed rename", got)
	}

	if len(historyCalls) != 2 {
		t.Fatalf("history queried %d times, want 2", len(historyCalls))
	}
	if !hasArg(historyCalls[0], "/stopAfter:50") {
		t.Errorf("first pass args = %v, want bounded window", historyCalls[0])
	}
	for _, a := range historyCalls[1] {
		if strings.HasPrefix(a, "/stopAfter:") {
			t.Errorf("second pass args = %v, want no stopAfter bound", historyCalls[1])
		}
	}
}

func TestConflictsUnresolvableRenameIsDropped(t *testing.T) {
	// Dropping a rename conflict whose old name cannot be recovered from
	// history is intended behavior, not an error path: a malformed conflict
	// entry would block the resolve flow on an item the tool can no longer
	// explain.
	noRenameHistory := "Changeset: 22\nUser: jason\n\nItems:\n  edit $/tfsTest_01/readme2.txt\n"

	r := &scriptRunner{}
	r.handler = func(args []string) (tool.Result, error) {
		switch args[0] {
		case "resolve":
			return tool.Result{Stdout: renameConflictOutput + "/home/user/tfs/other.txt: The item content has changed\n"}, nil
		case "history":
			return tool.Result{Stdout: noRenameHistory}, nil
		}
		return tool.Result{}, nil
	}
	c := New(r, tfvc.ServerContext{})

	got, err := c.Conflicts(context.Background(), "/home/user/tfs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The content conflict survives; the rename conflict vanishes.
	want := []tfvc.Conflict{{LocalPath: "/home/user/tfs/other.txt", Type: tfvc.ConflictContent}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Conflicts() = %+v, want %+v", got, want)
	}
}

func TestConflictsRenameWithoutPendingMatchIsDropped(t *testing.T) {
	// History explains the rename but no pending change references the old
	// name, so the local path cannot be recovered. Same intended drop.
	r := &scriptRunner{}
	r.handler = func(args []string) (tool.Result, error) {
		switch args[0] {
		case "resolve":
			return tool.Result{Stdout: renameConflictOutput}, nil
		case "history":
			return tool.Result{Stdout: renameHistoryOutput}, nil
		case "status":
			return tool.Result{Stdout: "There are no pending changes.\n"}, nil
		}
		return tool.Result{}, nil
	}
	c := New(r, tfvc.ServerContext{})

	got, err := c.Conflicts(context.Background(), "/home/user/tfs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Conflicts() = %+v, want empty", got)
	}
}

func TestConflictsHistoryCapBoundsSecondPass(t *testing.T) {
	noRenameHistory := "Changeset: 22\nUser: jason\n\nItems:\n  edit $/tfsTest_01/readme2.txt\n"

	var historyCalls [][]string
	r := &scriptRunner{}
	r.handler = func(args []string) (tool.Result, error) {
		switch args[0] {
		case "resolve":
			return tool.Result{Stdout: renameConflictOutput}, nil
		case "history":
			historyCalls = append(historyCalls, args)
			return tool.Result{Stdout: noRenameHistory}, nil
		}
		return tool.Result{}, nil
	}
	c := New(r, tfvc.ServerContext{}, WithHistoryCap(200))

	if _, err := c.Conflicts(context.Background(), "/home/user/tfs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(historyCalls) != 2 {
		t.Fatalf("history queried %d times, want 2", len(historyCalls))
	}
	if !hasArg(historyCalls[1], "/stopAfter:200") {
		t.Errorf("second pass args = %v, want capped at 200", historyCalls[1])
	}
}

func TestConflictsBothTypeReconstructed(t *testing.T) {
	bothOutput := "$/tfsTest_01/readme2.txt: The source and target both have changes\n"

	r := &scriptRunner{}
	r.handler = func(args []string) (tool.Result, error) {
		switch args[0] {
		case "resolve":
			return tool.Result{Stdout: bothOutput}, nil
		case "history":
			return tool.Result{Stdout: renameHistoryOutput}, nil
		case "status":
			return tool.Result{Stdout: renameStatusOutput}, nil
		}
		return tool.Result{}, nil
	}
	c := New(r, tfvc.ServerContext{})

	got, err := c.Conflicts(context.Background(), "/home/user/tfs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Type != tfvc.ConflictBoth {
		t.Fatalf("Conflicts() = %+v, want one both-type conflict", got)
	}
}
