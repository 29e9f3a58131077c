package model

// DiffStores compares two tree snapshots and returns the structural
// changes that turn old into new, one TreeEvent per change.
//
// Folders are matched by ID: a name change yields a renamed event, a
// parent change a moved event (both when both changed). Bookmarks that
// switch folders yield a removed event for the former parent and a
// created event for the new one, so both affected subtrees get
// re-synced. In-place bookmark edits yield a modified event.
func DiffStores(old, new *Store) []TreeEvent {
	var events []TreeEvent

	oldFolders := make(map[string]*Folder, len(old.Folders))
	for i := range old.Folders {
		oldFolders[old.Folders[i].ID] = &old.Folders[i]
	}
	newFolders := make(map[string]*Folder, len(new.Folders))
	for i := range new.Folders {
		newFolders[new.Folders[i].ID] = &new.Folders[i]
	}

	for i := range new.Folders {
		f := &new.Folders[i]
		prev, ok := oldFolders[f.ID]
		if !ok {
			events = append(events, TreeEvent{
				Kind:     NodeCreated,
				NodeID:   f.ID,
				ParentID: f.ParentID,
				IsFolder: true,
			})
			continue
		}
		if prev.Name != f.Name {
			events = append(events, TreeEvent{
				Kind:     NodeRenamed,
				NodeID:   f.ID,
				ParentID: f.ParentID,
				IsFolder: true,
			})
		}
		if !ptrEqual(prev.ParentID, f.ParentID) {
			events = append(events, TreeEvent{
				Kind:     NodeMoved,
				NodeID:   f.ID,
				ParentID: f.ParentID,
				IsFolder: true,
			})
		}
	}

	for i := range old.Folders {
		f := &old.Folders[i]
		if _, ok := newFolders[f.ID]; !ok {
			events = append(events, TreeEvent{
				Kind:     NodeRemoved,
				NodeID:   f.ID,
				ParentID: f.ParentID,
				IsFolder: true,
			})
		}
	}

	oldBookmarks := make(map[string]*Bookmark, len(old.Bookmarks))
	for i := range old.Bookmarks {
		oldBookmarks[old.Bookmarks[i].ID] = &old.Bookmarks[i]
	}
	newBookmarks := make(map[string]*Bookmark, len(new.Bookmarks))
	for i := range new.Bookmarks {
		newBookmarks[new.Bookmarks[i].ID] = &new.Bookmarks[i]
	}

	for i := range new.Bookmarks {
		b := &new.Bookmarks[i]
		prev, ok := oldBookmarks[b.ID]
		if !ok {
			events = append(events, TreeEvent{
				Kind:     NodeCreated,
				NodeID:   b.ID,
				ParentID: b.FolderID,
			})
			continue
		}
		if !ptrEqual(prev.FolderID, b.FolderID) {
			events = append(events,
				TreeEvent{Kind: NodeRemoved, NodeID: b.ID, ParentID: prev.FolderID},
				TreeEvent{Kind: NodeCreated, NodeID: b.ID, ParentID: b.FolderID},
			)
			continue
		}
		if !prev.Equal(*b) {
			events = append(events, TreeEvent{
				Kind:     NodeModified,
				NodeID:   b.ID,
				ParentID: b.FolderID,
			})
		}
	}

	for i := range old.Bookmarks {
		b := &old.Bookmarks[i]
		if _, ok := newBookmarks[b.ID]; !ok {
			events = append(events, TreeEvent{
				Kind:     NodeRemoved,
				NodeID:   b.ID,
				ParentID: b.FolderID,
			})
		}
	}

	return events
}
