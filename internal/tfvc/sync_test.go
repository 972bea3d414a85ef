package tfvc

import (
	"reflect"
	"testing"
)

func TestSyncCommandParseOutput(t *testing.T) {
	cmd, err := NewSyncCommand(ServerContext{}, "/home/user/project", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stdout := `/home/user/project:
Getting readme.txt
Replacing foo.txt

/home/user/project/docs:
Getting api.md
Deleting old.md
`
	got, err := cmd.ParseOutput(stdout, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := SyncResults{
		NewFiles:     []string{"/home/user/project/readme.txt", "/home/user/project/docs/api.md"},
		UpdatedFiles: []string{"/home/user/project/foo.txt"},
		DeletedFiles: []string{"/home/user/project/docs/old.md"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseOutput() = %+v, want %+v", got, want)
	}
}

func TestSyncCommandUpToDate(t *testing.T) {
	cmd, err := NewSyncCommand(ServerContext{}, "/root", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cmd.ParseOutput("All files are up to date.\n", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.UpToDate {
		t.Error("UpToDate = false, want true")
	}
	if len(got.NewFiles)+len(got.UpdatedFiles)+len(got.DeletedFiles) != 0 {
		t.Errorf("file lists = %+v, want empty", got)
	}
}

func TestSyncCommandArgs(t *testing.T) {
	t.Run("recursive", func(t *testing.T) {
		cmd, err := NewSyncCommand(ServerContext{}, "/root", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"get", "/root", "/noprompt", "/recursive"}
		if got := cmd.Args().Build(); !reflect.DeepEqual(got, want) {
			t.Errorf("Args() = %v, want %v", got, want)
		}
	})

	t.Run("non recursive", func(t *testing.T) {
		cmd, err := NewSyncCommand(ServerContext{}, "/root", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"get", "/root", "/noprompt"}
		if got := cmd.Args().Build(); !reflect.DeepEqual(got, want) {
			t.Errorf("Args() = %v, want %v", got, want)
		}
	})
}

func TestIsFolderHeader(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"/home/user/project:", true},
		{"/home/user/project/docs:", true},
		{"Getting readme.txt", false},
		{"Undoing edit: readme.txt", false},
		{":", false},
		{"All files are up to date.", false},
	}
	for _, tt := range tests {
		if got := isFolderHeader(tt.line); got != tt.want {
			t.Errorf("isFolderHeader(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
