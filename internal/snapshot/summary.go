package snapshot

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryEntry describes one synced folder for the summary document.
type SummaryEntry struct {
	Name      string
	FilePath  string
	Bookmarks int
	Tags      []string
}

// RenderSummary builds the human-readable README.md regenerated at the
// collection root after each successful per-folder sync. Entries are
// rendered in the order given; tags are deduplicated and sorted so the
// output is deterministic.
func RenderSummary(entries []SummaryEntry, updated time.Time) string {
	var b strings.Builder

	b.WriteString("# Bookmarks\n\n")
	fmt.Fprintf(&b, "Synced bookmark snapshots. Last updated %s.\n\n",
		updated.UTC().Format("2006-01-02 15:04 UTC"))

	total := 0
	b.WriteString("## Folders\n\n")
	if len(entries) == 0 {
		b.WriteString("No folders synced yet.\n\n")
	}
	for _, e := range entries {
		total += e.Bookmarks
		fmt.Fprintf(&b, "- **%s** ([`%s`](%s)): %d bookmarks\n",
			e.Name, e.FilePath, e.FilePath, e.Bookmarks)
	}
	if len(entries) > 0 {
		fmt.Fprintf(&b, "\n%d bookmarks across %d folders.\n\n", total, len(entries))
	}

	seen := make(map[string]bool)
	var tags []string
	for _, e := range entries {
		for _, t := range e.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	if len(tags) > 0 {
		sort.Strings(tags)
		b.WriteString("## Tags\n\n")
		for i, t := range tags {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "`%s`", t)
		}
		b.WriteString("\n")
	}

	return b.String()
}
