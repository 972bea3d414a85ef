package tfvc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/almtools/tfbridge/internal/tool"
)

const statusFixture = `$/tfsTest_01/readme.txt;C19
  User:        John Smith
  Change:      rename, edit
  Workspace:   MyWorkspace
  Local item:  /home/user/tfs/readme.txt
  Source item: $/tfsTest_01/readme2.txt

$/tfsTest_01/docs/new.txt
  User:        John Smith
  Change:      add
  Workspace:   MyWorkspace
  Local item:  /home/user/tfs/docs/new.txt
`

func TestStatusCommandParseOutput(t *testing.T) {
	cmd := mustStatusCommand(t)

	got, err := cmd.ParseOutput(statusFixture, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []PendingChange{
		{
			ServerItem:  "$/tfsTest_01/readme.txt",
			Version:     19,
			Owner:       "John Smith",
			ChangeTypes: []ChangeType{ChangeRename, ChangeEdit},
			Workspace:   "MyWorkspace",
			LocalItem:   "/home/user/tfs/readme.txt",
			SourceItem:  "$/tfsTest_01/readme2.txt",
		},
		{
			ServerItem:  "$/tfsTest_01/docs/new.txt",
			Owner:       "John Smith",
			ChangeTypes: []ChangeType{ChangeAdd},
			Workspace:   "MyWorkspace",
			LocalItem:   "/home/user/tfs/docs/new.txt",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseOutput() = %+v, want %+v", got, want)
	}
}

func TestStatusCommandNoPendingChanges(t *testing.T) {
	cmd := mustStatusCommand(t)

	got, err := cmd.ParseOutput("There are no pending changes.\n", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ParseOutput() = %v, want empty", got)
	}
}

func TestStatusCommandBadVersionNumber(t *testing.T) {
	cmd := mustStatusCommand(t)

	_, err := cmd.ParseOutput("$/tfsTest_01/readme.txt;Cxyz\n", "")
	var parseErr *tool.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %v, want *tool.ParseError", err)
	}
}

func TestStatusCommandArgs(t *testing.T) {
	cmd := mustStatusCommand(t)

	want := []string{"status", "/root", "/noprompt", "/format:detailed", "/recursive"}
	if got := cmd.Args().Build(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}
