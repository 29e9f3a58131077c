package remote

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/gitmarks/gitmarks/internal/share"
)

// Writer pushes snapshot files to a share's remote location using
// optimistic concurrency, and regenerates the collection's summary
// document as a best-effort secondary step.
type Writer struct {
	repo *RepoClient
	gist *GistClient
}

// NewWriter creates a Writer over both remote surfaces.
func NewWriter(repo *RepoClient, gist *GistClient) *Writer {
	return &Writer{repo: repo, gist: gist}
}

// PutSnapshot writes the snapshot content to the share's location.
//
// Repo shares fetch the current conditional token first: a missing
// file means create, an existing one means update with that token.
// A stale token surfaces as ConflictError and is fatal for this sync
// attempt; nothing is retried or merged. Gist shares have no token,
// so their update is last-write-wins.
func (w *Writer) PutSnapshot(ctx context.Context, s share.FolderShare, content []byte, message string) error {
	if s.ResourceType == share.ResourceGist {
		return w.gist.Update(ctx, s.ResourceID, string(content))
	}

	sha, err := w.currentToken(ctx, s.FilePath)
	if err != nil {
		return err
	}
	return w.repo.PutFile(ctx, s.FilePath, content, message, sha)
}

// DeleteSnapshot removes the share's remote file. A file that is
// already gone is not an error: there is nothing to delete.
func (w *Writer) DeleteSnapshot(ctx context.Context, s share.FolderShare, message string) error {
	if s.ResourceType == share.ResourceGist {
		err := w.gist.Delete(ctx, s.ResourceID)
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	return w.DeletePath(ctx, s.FilePath, message)
}

// DeletePath removes one repository file by path, fetching the current
// token first. Absence of the file is success.
func (w *Writer) DeletePath(ctx context.Context, path, message string) error {
	_, sha, err := w.repo.GetFile(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	return w.repo.DeleteFile(ctx, path, message, sha)
}

// PutSummary regenerates the collection-root summary document.
// Failures are logged and swallowed; the summary is advisory and must
// never fail the primary write.
func (w *Writer) PutSummary(ctx context.Context, content, message string) {
	sha, err := w.currentToken(ctx, share.SummaryPath)
	if err == nil {
		err = w.repo.PutFile(ctx, share.SummaryPath, []byte(content), message, sha)
	}
	if err != nil {
		log.WithError(err).Warn("summary update failed")
	}
}

// ListTree exposes the repository file tree for reconciliation.
func (w *Writer) ListTree(ctx context.Context) ([]TreeEntry, error) {
	return w.repo.ListTree(ctx)
}

// currentToken returns the conditional token for a path, or empty when
// the path does not exist yet.
func (w *Writer) currentToken(ctx context.Context, path string) (string, error) {
	_, sha, err := w.repo.GetFile(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return sha, nil
}
