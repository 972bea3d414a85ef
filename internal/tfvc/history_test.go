package tfvc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/almtools/tfbridge/internal/tool"
)

const historyFixture = `Changeset: 20
User: jason
Date: 2016-06-07T11:18:18.790-0400

Comment:
  renamed the readme

Items:
  rename $/tfsTest_01/readme2.txt
-------------------------------------------------------------------------
Changeset: 19
User: jason
Date: 2016-06-07T11:02:11.000-0400

Comment:
  editing the readme
  second line of the comment

Items:
  edit $/tfsTest_01/readme.txt
  add, edit $/tfsTest_01/docs/notes.txt
-------------------------------------------------------------------------
Changeset: 18
User: sara

Comment:
  initial add

Items:
  add $/tfsTest_01/readme.txt
`

func TestHistoryCommandParseOutput(t *testing.T) {
	cmd, err := NewHistoryCommand(ServerContext{}, "$/tfsTest_01", "", 50, false, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cmd.ParseOutput(historyFixture, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []ChangeSet{
		{
			ID:      20,
			Owner:   "jason",
			Date:    "2016-06-07T11:18:18.790-0400",
			Comment: "renamed the readme",
			Changes: []Change{
				{ServerItem: "$/tfsTest_01/readme2.txt", ChangeTypes: []ChangeType{ChangeRename}},
			},
		},
		{
			ID:      19,
			Owner:   "jason",
			Date:    "2016-06-07T11:02:11.000-0400",
			Comment: "editing the readme\nsecond line of the comment",
			Changes: []Change{
				{ServerItem: "$/tfsTest_01/readme.txt", ChangeTypes: []ChangeType{ChangeEdit}},
				{ServerItem: "$/tfsTest_01/docs/notes.txt", ChangeTypes: []ChangeType{ChangeAdd, ChangeEdit}},
			},
		},
		{
			ID:      18,
			Owner:   "sara",
			Comment: "initial add",
			Changes: []Change{
				{ServerItem: "$/tfsTest_01/readme.txt", ChangeTypes: []ChangeType{ChangeAdd}},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseOutput() = %+v, want %+v", got, want)
	}

	// Newest first is load bearing for rename reconstruction.
	if got[0].ID < got[1].ID {
		t.Error("changesets not ordered newest first")
	}
}

func TestHistoryCommandParseErrors(t *testing.T) {
	cmd, err := NewHistoryCommand(ServerContext{}, "$/p", "", 1, false, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		stdout string
	}{
		{
			name:   "non numeric changeset id",
			stdout: "Changeset: twenty\nUser: jason\n",
		},
		{
			name:   "block without changeset line",
			stdout: "User: jason\nDate: 2016-06-07\n",
		},
		{
			name:   "item line without server path",
			stdout: "Changeset: 5\nItems:\n  edit readme.txt\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cmd.ParseOutput(tt.stdout, "")
			var parseErr *tool.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("error = %v, want *tool.ParseError", err)
			}
		})
	}
}

func TestHistoryCommandEmptyOutput(t *testing.T) {
	cmd, err := NewHistoryCommand(ServerContext{}, "$/p", "", 1, false, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := cmd.ParseOutput("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ParseOutput() = %v, want empty", got)
	}
}

func TestHistoryCommandArgs(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		stopAfter int
		recursive bool
		user      string
		itemMode  bool
		want      []string
	}{
		{
			name:      "bounded recursive",
			stopAfter: 50,
			recursive: true,
			want:      []string{"history", "$/p", "/noprompt", "/format:detailed", "/stopAfter:50", "/recursive"},
		},
		{
			name:      "unbounded omits stopAfter",
			stopAfter: -1,
			want:      []string{"history", "$/p", "/noprompt", "/format:detailed"},
		},
		{
			name:      "item mode with version and user",
			version:   "C42",
			stopAfter: 1,
			user:      "jason",
			itemMode:  true,
			want:      []string{"history", "$/p", "/noprompt", "/format:detailed", "/version:C42", "/stopAfter:1", "/user:jason", "/itemmode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewHistoryCommand(ServerContext{}, "$/p", tt.version, tt.stopAfter, tt.recursive, tt.user, tt.itemMode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := cmd.Args().Build()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}
