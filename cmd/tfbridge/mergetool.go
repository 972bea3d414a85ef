package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/almtools/tfbridge/internal/config"
)

// runMergeTool hands a conflicted file to the configured external merge
// command, attached to a pty so full-screen tools render correctly. Blocks
// until the tool exits.
func runMergeTool(cfg *config.Config, file string) error {
	cmdline := cfg.GetMergeCommand()
	if len(cmdline) == 0 {
		return fmt.Errorf("no merge_command configured in %s", cfg.Path())
	}

	cmd := exec.Command(cmdline[0], append(cmdline[1:], file)...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start merge tool: %w", err)
	}
	defer ptmx.Close()

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(w), Rows: uint16(h)})
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err == nil {
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	go io.Copy(ptmx, os.Stdin)
	io.Copy(os.Stdout, ptmx)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("merge tool exited with error: %w", err)
	}
	return nil
}
