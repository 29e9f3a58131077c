package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/gitmarks/gitmarks/internal/model"
)

// BookmarkResult represents a fuzzy search match against a bookmark.
type BookmarkResult struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

// FolderResult represents a fuzzy search match against a folder path.
type FolderResult struct {
	Folder *model.Folder
	// Path is the slash-joined path from the root to the folder.
	Path  string
	Score int
}

// bookmarkTitles implements fuzzy.Source over a bookmark slice.
type bookmarkTitles []*model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// FuzzySearchBookmarks searches all bookmarks by title using fuzzy
// matching. Results come back sorted by match score, best first.
func FuzzySearchBookmarks(store *model.Store, query string) []BookmarkResult {
	if query == "" {
		return nil
	}

	bookmarks := make(bookmarkTitles, len(store.Bookmarks))
	for i := range store.Bookmarks {
		bookmarks[i] = &store.Bookmarks[i]
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]BookmarkResult, len(matches))
	for i, m := range matches {
		results[i] = BookmarkResult{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// FuzzySearchFolders searches folders by their full path so a query
// like "work/proj" can disambiguate same-named subfolders.
func FuzzySearchFolders(store *model.Store, query string) []FolderResult {
	if query == "" {
		return nil
	}

	paths := make([]string, len(store.Folders))
	for i := range store.Folders {
		paths[i] = strings.Join(store.FolderPath(store.Folders[i].ID), "/")
	}

	matches := fuzzy.Find(query, paths)

	results := make([]FolderResult, len(matches))
	for i, m := range matches {
		results[i] = FolderResult{
			Folder: &store.Folders[m.Index],
			Path:   paths[m.Index],
			Score:  m.Score,
		}
	}

	return results
}
