package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/gitmarks/gitmarks/internal/engine"
	"github.com/gitmarks/gitmarks/internal/importer"
	"github.com/gitmarks/gitmarks/internal/model"
	"github.com/gitmarks/gitmarks/internal/picker"
	"github.com/gitmarks/gitmarks/internal/remote"
	"github.com/gitmarks/gitmarks/internal/search"
	"github.com/gitmarks/gitmarks/internal/share"
	"github.com/gitmarks/gitmarks/internal/snapshot"
	"github.com/gitmarks/gitmarks/internal/storage"
)

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if os.Getenv("GITMARKS_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()
	case "link":
		runLink(os.Args[2:])
	case "unlink":
		runUnlink(os.Args[2:])
	case "shares":
		runShares()
	case "sync":
		runSync(os.Args[2:])
	case "pull":
		runPull(os.Args[2:])
	case "reconcile":
		runReconcile()
	case "watch":
		runWatch()
	case "whoami":
		runWhoami()
	case "token":
		runToken(os.Args[2:])
	case "import":
		runImport(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "find":
		runFind(strings.Join(os.Args[2:], " "))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	help := `gitmarks - sync bookmark folders to gists and repositories

Usage:
  gitmarks link <folder> [--gist|--repo]   Link a folder to a new remote
  gitmarks unlink <folder>                 Remove a folder's link
  gitmarks shares                          List linked folders
  gitmarks sync <folder> | --all           Push snapshot(s) to the remote
  gitmarks pull <folder>                   Print the remote snapshot
  gitmarks reconcile                       Delete orphaned snapshot files
  gitmarks watch                           Watch the tree and auto-sync
  gitmarks whoami                          Verify the stored credential
  gitmarks token <value>                   Store a new credential
  gitmarks import <file> [--skip-duplicates]
                                           Import Netscape bookmark HTML
  gitmarks export [folder]                 Print a snapshot as JSON
  gitmarks find <query>                    Fuzzy-find and copy a URL
  gitmarks help                            Show this help

Folders are addressed by name or by slash path (e.g. work/projects).

Configuration:
  ~/.config/gitmarks/config.json           Remote and export settings
  GITMARKS_TOKEN                           Credential override
`
	fmt.Print(help)
}

// app bundles everything a command needs. Built once per invocation.
type app struct {
	storage  storage.Storage
	config   *storage.Config
	registry *share.Registry
	engine   *engine.Engine
	guard    *remote.Guard
}

func newApp() *app {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatal("resolve config path", err)
	}
	config, err := storage.LoadConfig(configPath)
	if err != nil {
		fatal("load config", err)
	}

	treeStorage, err := storage.OpenStorage()
	if err != nil {
		fatal("open bookmark storage", err)
	}

	sharesPath, err := storage.DefaultSharesPath()
	if err != nil {
		fatal("resolve share map path", err)
	}
	registry, err := share.NewRegistry(share.NewJSONStore(sharesPath))
	if err != nil {
		fatal("load share map", err)
	}

	creds := storage.NewCredentials(configPath)
	client := remote.NewClient(config.APIBaseURL, creds)
	repo := remote.NewRepoClient(client, config.Owner, config.Repo, config.Branch)
	gist := remote.NewGistClient(client)
	guard := remote.NewGuard(client, creds)

	eng := engine.New(engine.Params{
		Registry: registry,
		Storage:  treeStorage,
		Writer:   remote.NewWriter(repo, gist),
		Reader:   remote.NewReader(repo, gist),
		Guard:    guard,
		Repo:     repo,
		Gist:     gist,
		Config:   config,
	})

	return &app{
		storage:  treeStorage,
		config:   config,
		registry: registry,
		engine:   eng,
		guard:    guard,
	}
}

// resolveFolder finds a folder by name or slash path, exiting with a
// message when it cannot.
func (a *app) resolveFolder(nameOrPath string) (*model.Store, *model.Folder) {
	store, err := a.storage.Load()
	if err != nil {
		fatal("load bookmarks", err)
	}
	folder := store.ResolveFolder(nameOrPath)
	if folder == nil {
		fmt.Fprintf(os.Stderr, "No folder matches %q\n", nameOrPath)
		os.Exit(1)
	}
	return store, folder
}

func runLink(args []string) {
	resourceType := share.ResourceGist
	var name string
	for _, arg := range args {
		switch arg {
		case "--gist":
			resourceType = share.ResourceGist
		case "--repo":
			resourceType = share.ResourceRepo
		default:
			name = arg
		}
	}
	if name == "" {
		fmt.Fprintln(os.Stderr, "Usage: gitmarks link <folder> [--gist|--repo]")
		os.Exit(1)
	}

	a := newApp()
	_, folder := a.resolveFolder(name)

	s, err := a.engine.LinkFolder(context.Background(), folder.ID, resourceType)
	if err != nil {
		if s != nil {
			// Link survived but the initial push failed.
			fmt.Fprintf(os.Stderr, "Linked %q but the first sync failed: %v\n", folder.Name, err)
			fmt.Fprintln(os.Stderr, "Retry with: gitmarks sync", folder.Name)
			os.Exit(1)
		}
		fatal("link folder", err)
	}
	fmt.Printf("Linked %q → %s\n", folder.Name, s.URL)
}

func runUnlink(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gitmarks unlink <folder>")
		os.Exit(1)
	}

	a := newApp()
	_, folder := a.resolveFolder(args[0])

	if err := a.engine.UnlinkFolder(folder.ID); err != nil {
		fatal("unlink folder", err)
	}
	fmt.Printf("Unlinked %q (the remote copy was not deleted)\n", folder.Name)
}

func runShares() {
	a := newApp()
	shares := a.registry.All()
	if len(shares) == 0 {
		fmt.Println("No folders are linked yet. Start with: gitmarks link <folder>")
		return
	}

	store, err := a.storage.Load()
	if err != nil {
		fatal("load bookmarks", err)
	}

	for _, s := range shares {
		status := "never synced"
		if s.LastSyncedAt != nil {
			status = "synced " + s.LastSyncedAt.Format("2006-01-02 15:04")
		}
		marker := ""
		if store.GetFolderByID(s.FolderID) == nil {
			marker = " [folder missing]"
		}
		fmt.Printf("%-20s %-6s %s (%s)%s\n", s.DisplayName, s.ResourceType, s.URL, status, marker)
	}
}

func runSync(args []string) {
	a := newApp()

	if len(args) >= 1 && args[0] == "--all" {
		result := a.engine.SyncAll(context.Background(), func(completed, total int) {
			fmt.Printf("\r%d/%d folders", completed, total)
		})
		fmt.Println()
		fmt.Printf("Synced %d, failed %d", result.Successes, result.Failures)
		if result.Skipped > 0 {
			fmt.Printf(", skipped %d", result.Skipped)
		}
		fmt.Println()
		if result.AuthAborted {
			fmt.Fprintln(os.Stderr, "Authentication failed; run: gitmarks token <value>")
			os.Exit(1)
		}
		if result.Failures > 0 {
			os.Exit(1)
		}
		return
	}

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gitmarks sync <folder> | --all")
		os.Exit(1)
	}

	_, folder := a.resolveFolder(args[0])
	if err := a.engine.SyncFolder(context.Background(), folder.ID); err != nil {
		fatal("sync folder", err)
	}
	fmt.Printf("Synced %q\n", folder.Name)
}

func runPull(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gitmarks pull <folder>")
		os.Exit(1)
	}

	a := newApp()
	_, folder := a.resolveFolder(args[0])

	content, ok := a.engine.Pull(context.Background(), folder.ID)
	if !ok {
		fmt.Fprintf(os.Stderr, "No remote snapshot available for %q\n", folder.Name)
		os.Exit(1)
	}
	fmt.Print(content)
}

func runReconcile() {
	a := newApp()
	if a.config.Owner == "" || a.config.Repo == "" {
		fmt.Fprintln(os.Stderr, "No repository configured: set owner and repo in config.json")
		os.Exit(1)
	}

	removed, err := a.engine.Reconcile(context.Background(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reconcile stopped after removing %d file(s): %v\n", removed, err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d orphaned snapshot file(s)\n", removed)
}

func runWatch() {
	a := newApp()

	treePath, err := storage.DefaultTreePath()
	if err != nil {
		fatal("resolve tree path", err)
	}

	watcher, err := engine.NewWatcher(engine.WatcherParams{
		Storage:  a.storage,
		TreePath: treePath,
	})
	if err != nil {
		fatal("start watcher", err)
	}

	dispatcher := engine.NewDispatcher(engine.DispatcherParams{
		Engine: a.engine,
		Source: watcher,
		Window: time.Duration(a.config.DebounceMs) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := watcher.Run(ctx); err != nil {
			log.WithError(err).Error("watcher stopped")
			stop()
		}
	}()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", treePath)
	dispatcher.Run(ctx, watcher.Events())
	fmt.Println("Stopped")
}

func runWhoami() {
	a := newApp()
	login, err := a.guard.Validate(context.Background())
	if err != nil {
		if remote.IsAuth(err) {
			fmt.Fprintln(os.Stderr, "Credential rejected; run: gitmarks token <value>")
		} else {
			fmt.Fprintf(os.Stderr, "Could not verify credential: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Authenticated as %s\n", login)
}

func runToken(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gitmarks token <value>")
		os.Exit(1)
	}

	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatal("resolve config path", err)
	}
	if err := storage.NewCredentials(configPath).Set(args[0]); err != nil {
		fatal("store token", err)
	}
	fmt.Println("Token stored")
}

func runImport(args []string) {
	var filePath string
	skipDuplicates := false
	for _, arg := range args {
		if arg == "--skip-duplicates" {
			skipDuplicates = true
		} else {
			filePath = arg
		}
	}
	if filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: gitmarks import <file.html|file.json> [--skip-duplicates]")
		os.Exit(1)
	}

	a := newApp()
	store, err := a.storage.Load()
	if err != nil {
		fatal("load bookmarks", err)
	}

	if strings.HasSuffix(strings.ToLower(filePath), ".json") {
		importSnapshot(a, store, filePath, skipDuplicates)
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		fatal("open file", err)
	}
	defer file.Close()

	folders, bookmarks, err := importer.ParseHTMLBookmarks(file)
	if err != nil {
		fatal("parse HTML", err)
	}

	added, skipped := store.ImportMerge(folders, bookmarks)
	if err := a.storage.Save(store); err != nil {
		fatal("save bookmarks", err)
	}

	fmt.Printf("Imported %d bookmarks, %d folders", added, len(folders))
	if skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", skipped)
	}
	fmt.Println()
}

// importSnapshot merges a snapshot JSON file into the local tree.
func importSnapshot(a *app, store *model.Store, filePath string, skipDuplicates bool) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		fatal("read file", err)
	}

	col, err := snapshot.Parse(data)
	if err != nil {
		fatal("parse snapshot", err)
	}

	imported := snapshot.Apply(store, col, snapshot.ImportOptions{
		SkipDuplicates: skipDuplicates,
	})
	if err := a.storage.Save(store); err != nil {
		fatal("save bookmarks", err)
	}
	fmt.Printf("Imported %d bookmarks from %q\n", imported, col.Metadata.Name)
}

func runExport(args []string) {
	a := newApp()
	store, err := a.storage.Load()
	if err != nil {
		fatal("load bookmarks", err)
	}

	var rootID *string
	name := "All Bookmarks"
	if len(args) >= 1 {
		folder := store.ResolveFolder(args[0])
		if folder == nil {
			fmt.Fprintf(os.Stderr, "No folder matches %q\n", args[0])
			os.Exit(1)
		}
		rootID = &folder.ID
		name = folder.Name
	}

	content, err := snapshot.Export(store, rootID, snapshot.Options{
		Name:         name,
		Author:       a.config.Author,
		IsPublic:     a.config.Public,
		IncludeTags:  a.config.IncludeTags,
		IncludeNotes: a.config.IncludeNotes,
	}).Render()
	if err != nil {
		fatal("render snapshot", err)
	}
	fmt.Println(string(content))
}

func runFind(query string) {
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: gitmarks find <query>")
		os.Exit(1)
	}

	a := newApp()
	store, err := a.storage.Load()
	if err != nil {
		fatal("load bookmarks", err)
	}

	results := search.FuzzySearchBookmarks(store, query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for %q\n", query)
		return
	}

	var selected *model.Bookmark
	if len(results) == 1 {
		selected = results[0].Bookmark
	} else {
		p := picker.New(store, query)
		finalModel, err := tea.NewProgram(p).Run()
		if err != nil {
			fatal("run picker", err)
		}
		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			return
		}
		selected = finalPicker.SelectedBookmark()
	}
	if selected == nil {
		return
	}

	if err := clipboard.WriteAll(selected.URL); err != nil {
		// Headless environments have no clipboard; printing still helps.
		fmt.Println(selected.URL)
		return
	}
	fmt.Printf("Copied to clipboard: %s\n", selected.URL)

	bookmark := store.GetBookmarkByID(selected.ID)
	if bookmark != nil {
		now := time.Now()
		bookmark.VisitedAt = &now
		if err := a.storage.Save(store); err != nil {
			log.WithError(err).Warn("could not record visit")
		}
	}
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", action, err)
	os.Exit(1)
}
