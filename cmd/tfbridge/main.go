package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/almtools/tfbridge/internal/client"
	"github.com/almtools/tfbridge/internal/config"
	"github.com/almtools/tfbridge/internal/tfvc"
	"github.com/almtools/tfbridge/internal/tool"
	"github.com/almtools/tfbridge/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfgPath, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	runner := &tool.ExecRunner{ToolPath: cfg.GetToolPath()}
	cx := tfvc.ServerContext{Collection: cfg.GetCollection(), Login: cfg.GetLogin()}
	c := client.New(runner, cx,
		client.WithHistoryWindow(cfg.GetHistoryWindow()),
		client.WithHistoryCap(cfg.GetHistoryCap()),
	)

	if err := dispatch(cfg, runner, c, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(cfg *config.Config, runner tool.Runner, c *client.Client, command string, args []string) error {
	ctx, cancel := newCommandContext(cfg)
	defer cancel()

	switch command {
	case "version":
		fmt.Printf("tfbridge %s\n", version.Version)
		v, err := tool.CheckVersion(ctx, runner)
		if err != nil {
			return err
		}
		fmt.Printf("client version %s (minimum %s)\n", v, tool.MinimumVersion)
		return nil

	case "workspace":
		path, err := oneArg(args, "workspace <localPath>")
		if err != nil {
			return err
		}
		ws, err := c.Workspace(ctx, path)
		if err != nil {
			return err
		}
		printWorkspace(ws)
		return nil

	case "sync":
		root, err := oneArg(args, "sync <root>")
		if err != nil {
			return err
		}
		results, err := c.SyncWorkspace(ctx, root)
		if err != nil {
			return err
		}
		printSyncResults(results)
		return nil

	case "status":
		path, err := oneArg(args, "status <path>")
		if err != nil {
			return err
		}
		changes, err := c.Status(ctx, path)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			fmt.Println("No pending changes.")
			return nil
		}
		for _, pc := range changes {
			fmt.Printf("%-30s %s\n", joinTypes(pc.ChangeTypes), pc.LocalItem)
		}
		return nil

	case "history":
		if len(args) < 1 {
			return fmt.Errorf("usage: tfbridge history <path> [count]")
		}
		stopAfter := 10
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid count %q: %w", args[1], err)
			}
			stopAfter = n
		}
		changeSets, err := c.History(ctx, args[0], "", stopAfter, true, "", false)
		if err != nil {
			return err
		}
		for _, cs := range changeSets {
			fmt.Printf("C%d  %-16s %s\n", cs.ID, cs.Owner, cs.Comment)
		}
		return nil

	case "conflicts":
		root, err := oneArg(args, "conflicts <root>")
		if err != nil {
			return err
		}
		conflicts, err := c.Conflicts(ctx, root)
		if err != nil {
			return err
		}
		if len(conflicts) == 0 {
			fmt.Println("No conflicts found.")
			return nil
		}
		for _, conflict := range conflicts {
			printConflict(conflict)
		}
		return nil

	case "resolve":
		return runResolve(ctx, cfg, c, args)

	case "undo":
		if len(args) == 0 {
			return fmt.Errorf("usage: tfbridge undo <file>...")
		}
		undone, err := c.UndoLocalFiles(ctx, args)
		if err != nil {
			return err
		}
		for _, f := range undone {
			fmt.Printf("Undone %s\n", f)
		}
		return nil

	case "rename":
		if len(args) != 2 {
			return fmt.Errorf("usage: tfbridge rename <oldName> <newName>")
		}
		return c.RenameFile(ctx, args[0], args[1])

	case "add":
		if len(args) == 0 {
			return fmt.Errorf("usage: tfbridge add <file>...")
		}
		added, err := c.AddFiles(ctx, args)
		if err != nil {
			return err
		}
		for _, f := range added {
			fmt.Printf("Added %s\n", f)
		}
		return nil

	case "get":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: tfbridge get <itemSpec> <destination> [version]")
		}
		version := 0
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[2], err)
			}
			version = n
		}
		dest, err := c.Download(ctx, args[0], version, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", dest)
		return nil

	case "help", "-h", "--help":
		printUsage()
		return nil

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
		return nil
	}
}

// newCommandContext applies the configured per-command timeout. The core
// never times out on its own; this is the caller-side policy.
func newCommandContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if timeout := cfg.CommandTimeout(); timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

func oneArg(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: tfbridge %s", usage)
	}
	return args[0], nil
}

func joinTypes(types []tfvc.ChangeType) string {
	s := ""
	for i, t := range types {
		if i > 0 {
			s += ", "
		}
		s += string(t)
	}
	return s
}

func printWorkspace(ws tfvc.Workspace) {
	fmt.Printf("Workspace:  %s\n", ws.Name)
	if ws.Owner != "" {
		fmt.Printf("Owner:      %s\n", ws.Owner)
	}
	if ws.Comment != "" {
		fmt.Printf("Comment:    %s\n", ws.Comment)
	}
	if ws.Collection != "" {
		fmt.Printf("Collection: %s\n", ws.Collection)
	}
	for _, m := range ws.Mappings {
		fmt.Printf("  %s: %s\n", m.ServerPath, m.LocalPath)
	}
}

func printSyncResults(results tfvc.SyncResults) {
	if results.UpToDate {
		fmt.Println("All files are up to date.")
		return
	}
	for _, f := range results.NewFiles {
		fmt.Printf("New      %s\n", f)
	}
	for _, f := range results.UpdatedFiles {
		fmt.Printf("Updated  %s\n", f)
	}
	for _, f := range results.DeletedFiles {
		fmt.Printf("Deleted  %s\n", f)
	}
}

func printConflict(conflict tfvc.Conflict) {
	switch conflict.Type {
	case tfvc.ConflictContent:
		fmt.Printf("%-8s %s\n", conflict.Type, conflict.LocalPath)
	default:
		fmt.Printf("%-8s %s (was %s)\n", conflict.Type, conflict.LocalPath, conflict.OldServerName)
	}
}

func printUsage() {
	fmt.Println("tfbridge - TFVC command-line bridge")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tfbridge <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  version                          Check the client version")
	fmt.Println("  workspace <localPath>            Show the workspace mapping a local path")
	fmt.Println("  sync <root>                      Get latest content recursively")
	fmt.Println("  status <path>                    List pending changes")
	fmt.Println("  history <path> [count]           Show recent changesets")
	fmt.Println("  conflicts <root>                 List conflicts under a root")
	fmt.Println("  resolve <root> [-auto:<mode>]    Resolve conflicts (interactive without -auto)")
	fmt.Println("  undo <file>...                   Undo pending local changes")
	fmt.Println("  rename <oldName> <newName>       Rename a committed item")
	fmt.Println("  add <file>...                    Schedule unversioned files for add")
	fmt.Println("  get <itemSpec> <dest> [version]  Download an item's contents")
	fmt.Println("  help                             Show this help message")
	fmt.Println()
	fmt.Println("Resolve modes: TakeTheirs, KeepYours, AutoMerge")
}
