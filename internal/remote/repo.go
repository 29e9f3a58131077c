package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// RepoClient accesses snapshot files stored as paths inside a
// repository. Every existing file carries a SHA that acts as the
// conditional-write token: updates and deletes must present the
// current SHA, and a stale one is rejected as a conflict.
type RepoClient struct {
	client *Client
	owner  string
	repo   string
	branch string
}

// NewRepoClient creates a RepoClient for one repository and branch.
func NewRepoClient(client *Client, owner, repo, branch string) *RepoClient {
	if branch == "" {
		branch = "main"
	}
	return &RepoClient{client: client, owner: owner, repo: repo, branch: branch}
}

// Slug returns the "owner/repo" collection identifier.
func (rc *RepoClient) Slug() string {
	return rc.owner + "/" + rc.repo
}

// FileURL returns the browser URL of a file in the repository.
func (rc *RepoClient) FileURL(path string) string {
	return fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", rc.owner, rc.repo, rc.branch, path)
}

// contentsResponse is the contents API shape for a single file.
type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// GetFile fetches a file's decoded content and its conditional token.
// Returns NotFoundError if no file exists at the path.
func (rc *RepoClient) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	var resp contentsResponse
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s",
		rc.owner, rc.repo, escapePath(path), url.QueryEscape(rc.branch))
	if err := rc.client.do(ctx, "GET", endpoint, nil, &resp); err != nil {
		return nil, "", err
	}

	// The transport encoding strips to base64 with embedded newlines.
	raw := strings.ReplaceAll(resp.Content, "\n", "")
	content, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("decode content of %s: %w", path, err)
	}
	return content, resp.SHA, nil
}

// putRequest is the create-or-update body for the contents API.
type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// PutFile creates or updates a file. Pass an empty sha when creating a
// new path; updates require the current token and fail with
// ConflictError when it is stale.
func (rc *RepoClient) PutFile(ctx context.Context, path string, content []byte, message, sha string) error {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", rc.owner, rc.repo, escapePath(path))
	body := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  rc.branch,
		SHA:     sha,
	}
	return rc.client.do(ctx, "PUT", endpoint, body, nil)
}

// deleteRequest is the delete body for the contents API.
type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// DeleteFile removes a file. The current token is required.
func (rc *RepoClient) DeleteFile(ctx context.Context, path, message, sha string) error {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", rc.owner, rc.repo, escapePath(path))
	body := deleteRequest{Message: message, SHA: sha, Branch: rc.branch}
	return rc.client.do(ctx, "DELETE", endpoint, body, nil)
}

// TreeEntry is one node of the repository's file tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
}

// treeResponse is the git trees API shape.
type treeResponse struct {
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// ListTree returns the repository's full recursive file tree.
func (rc *RepoClient) ListTree(ctx context.Context) ([]TreeEntry, error) {
	var resp treeResponse
	endpoint := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1",
		rc.owner, rc.repo, url.PathEscape(rc.branch))
	if err := rc.client.do(ctx, "GET", endpoint, nil, &resp); err != nil {
		return nil, err
	}

	files := make([]TreeEntry, 0, len(resp.Tree))
	for _, entry := range resp.Tree {
		if entry.Type == "blob" {
			files = append(files, entry)
		}
	}
	return files, nil
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
