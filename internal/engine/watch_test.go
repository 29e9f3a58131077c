package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gitmarks/gitmarks/internal/model"
	"github.com/gitmarks/gitmarks/internal/storage"
)

func TestWatcher_EmitsDiffOnFileChange(t *testing.T) {
	dir := t.TempDir()
	treePath := filepath.Join(dir, "bookmarks.json")
	treeStorage := storage.NewJSONStorage(treePath)

	initial := treeWithFolders("Reading")
	if err := treeStorage.Save(initial); err != nil {
		t.Fatalf("save initial tree: %v", err)
	}

	watcher, err := NewWatcher(WatcherParams{
		Storage:  treeStorage,
		TreePath: treePath,
		Settle:   20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := watcher.Run(ctx); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	// Give the watch a moment to attach before mutating the file.
	time.Sleep(50 * time.Millisecond)

	next := treeWithFolders("Reading")
	next.AddBookmark(model.Bookmark{
		ID:       "b-new",
		Title:    "New",
		URL:      "https://example.com/new",
		FolderID: strPtr("f1"),
	})
	if err := treeStorage.Save(next); err != nil {
		t.Fatalf("save updated tree: %v", err)
	}

	select {
	case ev := <-watcher.Events():
		if ev.Kind != model.NodeCreated || ev.NodeID != "b-new" {
			t.Errorf("unexpected event %v %s", ev.Kind, ev.NodeID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for tree event")
	}

	// Current() must already reflect the new state when the event is
	// delivered.
	if watcher.Current().GetBookmarkByID("b-new") == nil {
		t.Error("expected Current() to serve the tree the event describes")
	}
}

func TestWatcher_InitialStateIsCurrent(t *testing.T) {
	dir := t.TempDir()
	treePath := filepath.Join(dir, "bookmarks.json")
	treeStorage := storage.NewJSONStorage(treePath)

	if err := treeStorage.Save(treeWithFolders("Reading")); err != nil {
		t.Fatalf("save tree: %v", err)
	}

	watcher, err := NewWatcher(WatcherParams{Storage: treeStorage, TreePath: treePath})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	if watcher.Current().GetFolderByID("f1") == nil {
		t.Error("expected initial tree loaded")
	}
}
