package model

// EventKind classifies a structural change to the bookmark tree.
type EventKind int

const (
	// NodeCreated indicates a new folder or bookmark appeared under a parent.
	NodeCreated EventKind = iota
	// NodeRemoved indicates a folder or bookmark disappeared.
	NodeRemoved
	// NodeRenamed indicates a folder's name changed.
	NodeRenamed
	// NodeMoved indicates a folder was reparented.
	NodeMoved
	// NodeModified indicates a bookmark's content changed in place.
	NodeModified
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case NodeCreated:
		return "created"
	case NodeRemoved:
		return "removed"
	case NodeRenamed:
		return "renamed"
	case NodeMoved:
		return "moved"
	case NodeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// TreeEvent describes one structural change to the bookmark tree.
// ParentID is the node's parent for created/modified events and the
// former parent for removed events.
type TreeEvent struct {
	Kind     EventKind
	NodeID   string
	ParentID *string
	IsFolder bool
}
