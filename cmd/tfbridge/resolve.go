package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/almtools/tfbridge/internal/client"
	"github.com/almtools/tfbridge/internal/config"
	"github.com/almtools/tfbridge/internal/resolve"
	"github.com/almtools/tfbridge/internal/tfvc"
)

const (
	actionAcceptTheirs = "accept-theirs"
	actionAcceptYours  = "accept-yours"
	actionMerge        = "merge"
	actionMergeTool    = "merge-tool"
	actionQuit         = "quit"
)

// runResolve discovers conflicts under a root and resolves them, either in
// one batch with -auto:<mode> or interactively. Whatever is still pending
// when the session ends is recorded as skipped, never dropped.
func runResolve(ctx context.Context, cfg *config.Config, c *client.Client, args []string) error {
	var root, auto string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-auto:") {
			auto = strings.TrimPrefix(arg, "-auto:")
		} else if root == "" {
			root = arg
		} else {
			return fmt.Errorf("usage: tfbridge resolve <root> [-auto:<mode>]")
		}
	}
	if root == "" {
		return fmt.Errorf("usage: tfbridge resolve <root> [-auto:<mode>]")
	}

	conflicts, err := c.Conflicts(ctx, root)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		fmt.Println("No conflicts found.")
		return nil
	}

	session := resolve.NewSession(c, conflicts)

	if auto != "" {
		if err := resolveAll(ctx, session, auto); err != nil {
			return err
		}
	} else {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("interactive resolve requires a terminal; use -auto:<mode>")
		}
		// Keep the config fresh during a long interactive session so merge
		// tool changes apply without restarting.
		if watcher := config.NewWatcher(cfg, nil); watcher != nil {
			watcher.Start()
			defer watcher.Stop()
		}
		if err := resolveInteractive(ctx, cfg, session); err != nil {
			return err
		}
	}

	entries := session.ProcessSkipped()
	printSummary(entries)

	if msg, ok := session.FirstError(); ok {
		return fmt.Errorf("unresolved conflict: %s", msg)
	}
	return nil
}

func resolveAll(ctx context.Context, session *resolve.Session, auto string) error {
	selection := make([]int, len(session.Entries()))
	for i := range selection {
		selection[i] = i
	}

	var err error
	switch tfvc.AutoResolveType(auto) {
	case tfvc.TakeTheirs:
		_, err = session.AcceptTheirs(ctx, selection)
	case tfvc.KeepYours:
		_, err = session.AcceptYours(ctx, selection)
	case tfvc.AutoMerge:
		_, err = session.Merge(ctx, selection)
	default:
		return fmt.Errorf("unknown resolve mode %q (TakeTheirs, KeepYours, AutoMerge)", auto)
	}
	return err
}

func resolveInteractive(ctx context.Context, cfg *config.Config, session *resolve.Session) error {
	for !session.Done() {
		entries := session.Entries()

		var options []huh.Option[int]
		for i, e := range entries {
			if e.State != resolve.Pending {
				continue
			}
			label := fmt.Sprintf("%s (%s)", e.Conflict.LocalPath, e.Conflict.Type)
			options = append(options, huh.NewOption(label, i))
		}
		if len(options) == 0 {
			return nil
		}

		var selection []int
		err := huh.NewMultiSelect[int]().
			Title("Select conflicts to act on").
			Options(options...).
			Value(&selection).
			Run()
		if err != nil {
			return fmt.Errorf("selection aborted: %w", err)
		}
		if len(selection) == 0 {
			// Nothing selected means the user is done; the rest is skipped.
			return nil
		}

		var action string
		err = huh.NewSelect[string]().
			Title("Resolution").
			Options(
				huh.NewOption("Accept theirs (server version)", actionAcceptTheirs),
				huh.NewOption("Accept yours (local version)", actionAcceptYours),
				huh.NewOption("Auto-merge", actionMerge),
				huh.NewOption("Merge in external tool", actionMergeTool),
				huh.NewOption("Quit (skip the rest)", actionQuit),
			).
			Value(&action).
			Run()
		if err != nil {
			return fmt.Errorf("selection aborted: %w", err)
		}

		switch action {
		case actionAcceptTheirs:
			_, err = session.AcceptTheirs(ctx, selection)
		case actionAcceptYours:
			_, err = session.AcceptYours(ctx, selection)
		case actionMerge:
			_, err = session.Merge(ctx, selection)
		case actionMergeTool:
			for _, idx := range selection {
				if mergeErr := runMergeTool(cfg, entries[idx].Conflict.LocalPath); mergeErr != nil {
					fmt.Fprintf(os.Stderr, "merge tool failed for %s: %v\n", entries[idx].Conflict.LocalPath, mergeErr)
				}
			}
			// Record the hand-merged files with the tool.
			_, err = session.Merge(ctx, selection)
		case actionQuit:
			return nil
		}
		if err != nil {
			return err
		}

		if msg, ok := session.FirstError(); ok {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
	}
	return nil
}

func printSummary(entries []resolve.Entry) {
	for _, e := range entries {
		fmt.Printf("%-16s %s\n", e.State, e.Conflict.LocalPath)
	}
}
