package model

import "strings"

// Store holds all bookmarks and folders.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
}

// AddFolder appends a folder to the store.
func (s *Store) AddFolder(f Folder) {
	s.Folders = append(s.Folders, f)
}

// AddBookmark appends a bookmark to the store.
func (s *Store) AddBookmark(b Bookmark) {
	s.Bookmarks = append(s.Bookmarks, b)
}

// GetFoldersInFolder returns folders with the given parent ID.
// Pass nil for root level folders.
func (s *Store) GetFoldersInFolder(parentID *string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if ptrEqual(f.ParentID, parentID) {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInFolder returns bookmarks in the given folder.
// Pass nil for root level bookmarks.
func (s *Store) GetBookmarksInFolder(folderID *string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if ptrEqual(b.FolderID, folderID) {
			result = append(result, b)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// FolderPath returns the folder names from the root down to the given
// folder, e.g. ["Development", "Go"]. Returns nil if the ID is unknown.
func (s *Store) FolderPath(id string) []string {
	var names []string
	cur := s.GetFolderByID(id)
	if cur == nil {
		return nil
	}
	for cur != nil {
		names = append([]string{cur.Name}, names...)
		if cur.ParentID == nil {
			break
		}
		cur = s.GetFolderByID(*cur.ParentID)
	}
	return names
}

// FolderChain returns the folder IDs starting at the given folder and
// walking up to the root, the given folder first. Returns nil for a nil
// start.
func (s *Store) FolderChain(startID *string) []string {
	var chain []string
	cur := startID
	for cur != nil {
		f := s.GetFolderByID(*cur)
		if f == nil {
			break
		}
		chain = append(chain, f.ID)
		cur = f.ParentID
	}
	return chain
}

// ResolveFolder finds a folder by exact name or slash-joined path
// ("Development/Go"). When several folders share a name the first match
// in store order wins.
func (s *Store) ResolveFolder(nameOrPath string) *Folder {
	if strings.Contains(nameOrPath, "/") {
		segments := strings.Split(nameOrPath, "/")
		var parentID *string
		var found *Folder
		for _, seg := range segments {
			found = nil
			for i := range s.Folders {
				if s.Folders[i].Name == seg && ptrEqual(s.Folders[i].ParentID, parentID) {
					found = &s.Folders[i]
					break
				}
			}
			if found == nil {
				return nil
			}
			id := found.ID
			parentID = &id
		}
		return found
	}

	for i := range s.Folders {
		if s.Folders[i].Name == nameOrPath {
			return &s.Folders[i]
		}
	}
	return nil
}

// HasBookmarkURL reports whether the given folder already contains a
// bookmark with this URL. Pass nil for the root level.
func (s *Store) HasBookmarkURL(folderID *string, url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url && ptrEqual(b.FolderID, folderID) {
			return true
		}
	}
	return false
}

// ImportMerge merges imported folders and bookmarks into the store.
// Imported folders are matched by name against existing folders at the
// same level and reused instead of duplicated. Bookmarks whose URL
// already exists anywhere in the store are skipped.
// Returns the number of bookmarks added and skipped.
func (s *Store) ImportMerge(folders []Folder, bookmarks []Bookmark) (added, skipped int) {
	// Map from imported folder ID to the ID it ends up with in the store.
	idMap := make(map[string]string)

	existingURLs := make(map[string]bool)
	for _, b := range s.Bookmarks {
		existingURLs[b.URL] = true
	}

	for _, f := range folders {
		parentID := remapParent(f.ParentID, idMap)

		var existing *Folder
		for i := range s.Folders {
			if s.Folders[i].Name == f.Name && ptrEqual(s.Folders[i].ParentID, parentID) {
				existing = &s.Folders[i]
				break
			}
		}

		if existing != nil {
			idMap[f.ID] = existing.ID
			continue
		}

		merged := f
		merged.ParentID = parentID
		s.Folders = append(s.Folders, merged)
		idMap[f.ID] = merged.ID
	}

	for _, b := range bookmarks {
		if existingURLs[b.URL] {
			skipped++
			continue
		}

		merged := b
		merged.FolderID = remapParent(b.FolderID, idMap)
		s.Bookmarks = append(s.Bookmarks, merged)
		existingURLs[merged.URL] = true
		added++
	}

	return added, skipped
}

// remapParent translates an imported parent pointer through the ID map.
func remapParent(id *string, idMap map[string]string) *string {
	if id == nil {
		return nil
	}
	if mapped, ok := idMap[*id]; ok {
		return &mapped
	}
	return id
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
