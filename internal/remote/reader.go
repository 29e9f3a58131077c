package remote

import (
	"context"

	"github.com/gitmarks/gitmarks/internal/share"
)

// Reader fetches snapshot content from a share's remote location.
type Reader struct {
	repo *RepoClient
	gist *GistClient
}

// NewReader creates a Reader over both remote surfaces.
func NewReader(repo *RepoClient, gist *GistClient) *Reader {
	return &Reader{repo: repo, gist: gist}
}

// FetchContent returns the raw snapshot text for the share. A missing
// file comes back as NotFoundError so callers can render "nothing
// synced yet" instead of an alarm.
func (r *Reader) FetchContent(ctx context.Context, s share.FolderShare) (string, error) {
	switch s.ResourceType {
	case share.ResourceGist:
		return r.gist.FetchManagedFile(ctx, s.ResourceID)
	default:
		content, _, err := r.repo.GetFile(ctx, s.FilePath)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
}
