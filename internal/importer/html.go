package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/gitmarks/gitmarks/internal/model"
)

// ParseHTMLBookmarks parses Netscape bookmark HTML and returns the
// folders and bookmarks it describes. The format is what every major
// browser produces on export: nested DL lists, H3 folder headings,
// A anchors with optional ADD_DATE and TAGS attributes, and DD text
// following an anchor as its description.
func ParseHTMLBookmarks(r io.Reader) ([]model.Folder, []model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, err
	}

	var folders []model.Folder
	var bookmarks []model.Bookmark

	// Stack of folder IDs mirrors DL nesting; nil entries mean root.
	var folderStack []*string
	// Folder announced by an H3, pushed when its DL starts.
	var pendingFolder *model.Folder

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := textContent(n)
				if name != "" {
					var parentID *string
					if len(folderStack) > 0 {
						parentID = folderStack[len(folderStack)-1]
					}

					folder := model.NewFolder(model.NewFolderParams{
						Name:     name,
						ParentID: parentID,
					})
					folders = append(folders, folder)
					pendingFolder = &folders[len(folders)-1]
				}
				return

			case "a":
				href := attr(n, "href")
				if href == "" {
					return
				}

				title := textContent(n)
				if title == "" {
					title = href
				}

				var folderID *string
				if len(folderStack) > 0 {
					folderID = folderStack[len(folderStack)-1]
				}

				createdAt := time.Now()
				if addDate := attr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						createdAt = time.Unix(ts, 0)
					}
				}

				bookmarks = append(bookmarks, model.Bookmark{
					ID:        model.GenerateUUID(),
					Title:     title,
					URL:       href,
					FolderID:  folderID,
					Tags:      parseTags(attr(n, "tags")),
					Notes:     descriptionFor(n),
					CreatedAt: createdAt,
					VisitedAt: nil,
				})
				return

			case "dl":
				pushed := false
				if pendingFolder != nil {
					id := pendingFolder.ID
					folderStack = append(folderStack, &id)
					pendingFolder = nil
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed && len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return folders, bookmarks, nil
}

// descriptionFor finds the DD description for a bookmark anchor. The
// anchor sits inside a DT; the matching DD is the DT's next element
// sibling.
func descriptionFor(anchor *html.Node) string {
	dt := anchor.Parent
	for dt != nil && !isElement(dt, "dt") {
		dt = dt.Parent
	}
	if dt == nil {
		return ""
	}
	for sib := dt.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if isElement(sib, "dd") {
			return textContent(sib)
		}
		// Another DT means this entry has no description.
		return ""
	}
	return ""
}

// parseTags splits a TAGS attribute into clean tag strings.
func parseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// textContent returns the trimmed text content of a node.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// attr returns an attribute value, matching the key case-insensitively.
func attr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if strings.ToLower(a.Key) == key {
			return a.Val
		}
	}
	return ""
}

// isElement reports whether n is an element with the given lowercase
// tag name.
func isElement(n *html.Node, name string) bool {
	return n.Type == html.ElementNode && strings.ToLower(n.Data) == name
}
