package remote

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// GistFileName is the managed file inside a single-file collection.
// Kept constant so renames of the local folder never orphan the file.
const GistFileName = "bookmarks.json"

// GistClient accesses single-file snapshot collections. The gist
// surface exposes no conditional token, so concurrent external edits
// are last-write-wins.
type GistClient struct {
	client *Client
}

// NewGistClient creates a GistClient.
func NewGistClient(client *Client) *GistClient {
	return &GistClient{client: client}
}

// gistFile is one file inside a gist payload.
type gistFile struct {
	Content string `json:"content"`
}

// gistResponse is the gist API shape.
type gistResponse struct {
	ID      string `json:"id"`
	HTMLURL string `json:"html_url"`
	Files   map[string]struct {
		Content   string `json:"content"`
		Truncated bool   `json:"truncated"`
	} `json:"files"`
}

// Create makes a new gist holding the managed snapshot file and
// returns its collection ID and browser URL.
func (gc *GistClient) Create(ctx context.Context, description string, public bool, content string) (id, htmlURL string, err error) {
	body := struct {
		Description string              `json:"description"`
		Public      bool                `json:"public"`
		Files       map[string]gistFile `json:"files"`
	}{
		Description: description,
		Public:      public,
		Files:       map[string]gistFile{GistFileName: {Content: content}},
	}

	var resp gistResponse
	if err := gc.client.do(ctx, "POST", "/gists", body, &resp); err != nil {
		return "", "", err
	}
	return resp.ID, resp.HTMLURL, nil
}

// FetchManagedFile returns the content of the collection's snapshot
// file: the managed name when present, otherwise the first
// JSON-suffixed file. Returns NotFoundError when the gist holds no
// JSON file at all.
func (gc *GistClient) FetchManagedFile(ctx context.Context, id string) (string, error) {
	var resp gistResponse
	if err := gc.client.do(ctx, "GET", "/gists/"+id, nil, &resp); err != nil {
		return "", err
	}

	if f, ok := resp.Files[GistFileName]; ok {
		return f.Content, nil
	}

	names := make([]string, 0, len(resp.Files))
	for name := range resp.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.HasSuffix(name, ".json") {
			return resp.Files[name].Content, nil
		}
	}
	return "", &NotFoundError{Path: fmt.Sprintf("gists/%s/%s", id, GistFileName)}
}

// Update overwrites the managed snapshot file.
func (gc *GistClient) Update(ctx context.Context, id, content string) error {
	body := struct {
		Files map[string]gistFile `json:"files"`
	}{
		Files: map[string]gistFile{GistFileName: {Content: content}},
	}
	return gc.client.do(ctx, "PATCH", "/gists/"+id, body, nil)
}

// Delete removes the whole gist.
func (gc *GistClient) Delete(ctx context.Context, id string) error {
	return gc.client.do(ctx, "DELETE", "/gists/"+id, nil, nil)
}
