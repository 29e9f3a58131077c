package share

import "strings"

const (
	// SnapshotDir is the repository directory holding per-folder snapshots.
	SnapshotDir = "bookmarks"
	// RootSnapshotPath is the repository path of the whole-collection export.
	RootSnapshotPath = "bookmarks.json"
	// SummaryPath is the repository path of the generated summary document.
	SummaryPath = "README.md"
)

// SanitizeName converts a folder display name into a safe path segment.
// The rule must stay byte-for-byte stable across renames: lowercase,
// every character outside [a-z0-9-_] becomes '-', runs of dashes
// collapse into one, and leading/trailing dashes are dropped.
// "Work Stuff!!" sanitizes to "work-stuff".
func SanitizeName(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	lastDash := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// FilePathFor returns the repository path for a folder's snapshot file,
// e.g. "bookmarks/work-stuff.json".
func FilePathFor(name string) string {
	return SnapshotDir + "/" + SanitizeName(name) + ".json"
}
