package snapshot

import (
	"testing"
	"time"

	"gotest.tools/v3/golden"

	"github.com/gitmarks/gitmarks/internal/model"
)

func strPtr(s string) *string {
	return &s
}

// fixtureStore builds a small tree:
//
//	Development/
//	  Go Blog (bookmark)
//	  Go/
//	    Go Spec (bookmark)
//	    Web/
func fixtureStore() *model.Store {
	store := model.NewStore()
	store.AddFolder(model.Folder{ID: "f1", Name: "Development"})
	store.AddFolder(model.Folder{ID: "f2", Name: "Go", ParentID: strPtr("f1")})
	store.AddFolder(model.Folder{ID: "f3", Name: "Web", ParentID: strPtr("f2")})
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "Go Blog",
		URL:       "https://go.dev/blog",
		FolderID:  strPtr("f1"),
		Tags:      []string{"go", "news"},
		Notes:     "Official blog",
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b2",
		Title:     "Go Spec",
		URL:       "https://go.dev/ref/spec",
		FolderID:  strPtr("f2"),
		CreatedAt: time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC),
	})
	return store
}

func fixtureOptions() Options {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return Options{
		Name:         "Development",
		Description:  "Dev links",
		Author:       "tester",
		Source:       SourceRepo,
		IncludeTags:  true,
		IncludeNotes: true,
		Created:      at,
		Updated:      at,
	}
}

func TestExport_Golden(t *testing.T) {
	col := Export(fixtureStore(), strPtr("f1"), fixtureOptions())

	data, err := col.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	golden.Assert(t, string(data)+"\n", "export.golden")
}

func TestExport_Deterministic(t *testing.T) {
	store := fixtureStore()
	opts := fixtureOptions()

	first, err := Export(store, strPtr("f1"), opts).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := Export(store, strPtr("f1"), opts).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected identical exports for identical input")
	}
}

func TestExport_SubtreeOnly(t *testing.T) {
	store := fixtureStore()
	store.AddBookmark(model.Bookmark{
		ID:    "outside",
		Title: "Elsewhere",
		URL:   "https://example.com",
	})

	col := Export(store, strPtr("f2"), fixtureOptions())

	if len(col.Bookmarks) != 1 || col.Bookmarks[0].Title != "Go Spec" {
		t.Errorf("expected only Go Spec at the top level, got %v", col.Bookmarks)
	}
	if len(col.Folders) != 1 || col.Folders[0].Path != "Web" {
		t.Errorf("expected only the Web subfolder, got %v", col.Folders)
	}
}

func TestExport_WholeTree(t *testing.T) {
	col := Export(fixtureStore(), nil, fixtureOptions())

	if len(col.Folders) != 3 {
		t.Fatalf("expected 3 folder entries, got %d", len(col.Folders))
	}
	// Paths are root-relative when exporting the whole tree.
	if col.Folders[1].Path != "Development/Go" {
		t.Errorf("expected path Development/Go, got %s", col.Folders[1].Path)
	}
}

func TestExport_TagsAndNotesToggle(t *testing.T) {
	opts := fixtureOptions()
	opts.IncludeTags = false
	opts.IncludeNotes = false

	col := Export(fixtureStore(), strPtr("f1"), opts)

	entry := col.Bookmarks[0]
	if entry.Tags != nil {
		t.Errorf("expected tags omitted, got %v", entry.Tags)
	}
	if entry.Notes != "" {
		t.Errorf("expected notes omitted, got %q", entry.Notes)
	}
}

func TestExport_EmptyFolderKeepsEntry(t *testing.T) {
	col := Export(fixtureStore(), strPtr("f1"), fixtureOptions())

	var web *FolderEntry
	for i := range col.Folders {
		if col.Folders[i].Name == "Web" {
			web = &col.Folders[i]
		}
	}
	if web == nil {
		t.Fatal("expected empty folder to be exported")
	}
	if web.Bookmarks == nil || len(web.Bookmarks) != 0 {
		t.Errorf("expected empty bookmark list, got %v", web.Bookmarks)
	}
}

func TestBookmarkCount(t *testing.T) {
	col := Export(fixtureStore(), strPtr("f1"), fixtureOptions())
	if got := col.BookmarkCount(); got != 2 {
		t.Errorf("expected 2 bookmarks, got %d", got)
	}
}

func TestAllTags_FirstSeenOrder(t *testing.T) {
	col := Export(fixtureStore(), strPtr("f1"), fixtureOptions())
	tags := col.AllTags()
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "news" {
		t.Errorf("expected [go news], got %v", tags)
	}
}
