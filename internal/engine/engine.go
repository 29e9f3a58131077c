// Package engine drives folder-to-remote synchronization: it reacts
// to local tree changes, exports snapshots, pushes them through the
// remote writer, and keeps the share registry consistent.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gitmarks/gitmarks/internal/model"
	"github.com/gitmarks/gitmarks/internal/remote"
	"github.com/gitmarks/gitmarks/internal/share"
	"github.com/gitmarks/gitmarks/internal/snapshot"
	"github.com/gitmarks/gitmarks/internal/storage"
)

// ErrNotLinked is returned for operations on a folder without a share.
var ErrNotLinked = errors.New("folder is not linked to a remote")

// Engine owns the push/pull operations for linked folders.
type Engine struct {
	registry *share.Registry
	storage  storage.Storage
	writer   *remote.Writer
	reader   *remote.Reader
	guard    *remote.Guard
	repo     *remote.RepoClient
	gist     *remote.GistClient
	config   *storage.Config
}

// Params holds the collaborators an Engine needs.
type Params struct {
	Registry *share.Registry
	Storage  storage.Storage
	Writer   *remote.Writer
	Reader   *remote.Reader
	Guard    *remote.Guard
	Repo     *remote.RepoClient
	Gist     *remote.GistClient
	Config   *storage.Config
}

// New creates an Engine.
func New(params Params) *Engine {
	return &Engine{
		registry: params.Registry,
		storage:  params.Storage,
		writer:   params.Writer,
		reader:   params.Reader,
		guard:    params.Guard,
		repo:     params.Repo,
		gist:     params.Gist,
		config:   params.Config,
	}
}

// Registry exposes the share registry.
func (e *Engine) Registry() *share.Registry {
	return e.registry
}

// LinkFolder creates a share for the folder and performs the initial
// sync. Linking an already linked folder replaces its share.
func (e *Engine) LinkFolder(ctx context.Context, folderID string, resourceType share.ResourceType) (*share.FolderShare, error) {
	store, err := e.storage.Load()
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	folder := store.GetFolderByID(folderID)
	if folder == nil {
		return nil, fmt.Errorf("folder %s not found in local tree", folderID)
	}

	switch resourceType {
	case share.ResourceGist:
		opts := e.exportOptions(folder.Name, snapshot.SourceGist)
		content, err := snapshot.Export(store, &folderID, opts).Render()
		if err != nil {
			return nil, err
		}
		id, url, err := e.gist.Create(ctx, "Bookmarks: "+folder.Name, e.config.Public, string(content))
		if err != nil {
			e.guard.InterceptError(err)
			return nil, err
		}
		s := share.FolderShare{
			FolderID:     folderID,
			ResourceType: share.ResourceGist,
			ResourceID:   id,
			URL:          url,
			DisplayName:  folder.Name,
		}
		if err := e.registry.Link(s); err != nil {
			return nil, err
		}
		if err := e.registry.Touch(folderID, time.Now()); err != nil {
			return nil, err
		}
		return &s, nil

	case share.ResourceRepo:
		if e.config.Owner == "" || e.config.Repo == "" {
			return nil, errors.New("no repository configured: set owner and repo in config.json")
		}
		filePath := share.FilePathFor(folder.Name)
		s := share.FolderShare{
			FolderID:     folderID,
			ResourceType: share.ResourceRepo,
			ResourceID:   e.repo.Slug(),
			URL:          e.repo.FileURL(filePath),
			DisplayName:  folder.Name,
			FilePath:     filePath,
		}
		if err := e.registry.Link(s); err != nil {
			return nil, err
		}
		if err := e.SyncFolder(ctx, folderID); err != nil {
			// The share stays so the user can retry with plain sync.
			return &s, err
		}
		return &s, nil

	default:
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
}

// UnlinkFolder removes the folder's share. The remote file is not
// touched.
func (e *Engine) UnlinkFolder(folderID string) error {
	if e.registry.Get(folderID) == nil {
		return ErrNotLinked
	}
	return e.registry.Unlink(folderID)
}

// SyncFolder regenerates the folder's snapshot and pushes it to the
// share's remote location, then records the sync time. For repo shares
// the collection summary is regenerated best-effort afterwards.
func (e *Engine) SyncFolder(ctx context.Context, folderID string) error {
	s := e.registry.Get(folderID)
	if s == nil {
		return ErrNotLinked
	}

	store, err := e.storage.Load()
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}
	folder := store.GetFolderByID(folderID)
	if folder == nil {
		return fmt.Errorf("folder %s not found in local tree", folderID)
	}

	source := snapshot.SourceRepo
	if s.ResourceType == share.ResourceGist {
		source = snapshot.SourceGist
	}
	opts := e.exportOptions(s.DisplayName, source)
	content, err := snapshot.Export(store, &folderID, opts).Render()
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Sync bookmarks: %s", s.DisplayName)
	if err := e.writer.PutSnapshot(ctx, *s, content, message); err != nil {
		e.guard.InterceptError(err)
		return err
	}

	if err := e.registry.Touch(folderID, time.Now()); err != nil {
		return err
	}

	if s.ResourceType == share.ResourceRepo {
		e.updateSummary(ctx, store)
	}

	log.WithFields(log.Fields{
		"folder": s.DisplayName,
		"target": s.URL,
	}).Info("folder synced")
	return nil
}

// Pull fetches the share's remote snapshot text. Pull is advisory:
// any failure, including "nothing synced yet", collapses to ok=false.
func (e *Engine) Pull(ctx context.Context, folderID string) (content string, ok bool) {
	s := e.registry.Get(folderID)
	if s == nil {
		return "", false
	}
	text, err := e.reader.FetchContent(ctx, *s)
	if err != nil {
		e.guard.InterceptError(err)
		log.WithError(err).WithField("folder", s.DisplayName).Debug("pull failed")
		return "", false
	}
	return text, true
}

// DeleteRemotePath removes one repository file, used for stale-path
// cleanup after a rename.
func (e *Engine) DeleteRemotePath(ctx context.Context, path string) error {
	err := e.writer.DeletePath(ctx, path, "Remove stale bookmark snapshot")
	if err != nil {
		e.guard.InterceptError(err)
	}
	return err
}

// DeleteShareTarget removes a share's remote file as part of a
// folder-deletion cascade.
func (e *Engine) DeleteShareTarget(ctx context.Context, s share.FolderShare) error {
	err := e.writer.DeleteSnapshot(ctx, s, fmt.Sprintf("Remove bookmarks: %s", s.DisplayName))
	if err != nil {
		e.guard.InterceptError(err)
	}
	return err
}

// exportOptions builds snapshot options from the configuration.
func (e *Engine) exportOptions(name, source string) snapshot.Options {
	return snapshot.Options{
		Name:         name,
		Description:  fmt.Sprintf("Bookmarks exported from the %q folder", name),
		Author:       e.config.Author,
		IsPublic:     e.config.Public,
		Source:       source,
		IncludeTags:  e.config.IncludeTags,
		IncludeNotes: e.config.IncludeNotes,
	}
}

// updateSummary regenerates the repository's summary document from
// every share in the collection. Failures never propagate.
func (e *Engine) updateSummary(ctx context.Context, store *model.Store) {
	shares := e.registry.ForCollection(e.repo.Slug())
	sort.Slice(shares, func(i, j int) bool { return shares[i].DisplayName < shares[j].DisplayName })
	entries := make([]snapshot.SummaryEntry, 0, len(shares))
	for _, s := range shares {
		id := s.FolderID
		col := snapshot.Export(store, &id, snapshot.Options{IncludeTags: true})
		entries = append(entries, snapshot.SummaryEntry{
			Name:      s.DisplayName,
			FilePath:  s.FilePath,
			Bookmarks: col.BookmarkCount(),
			Tags:      col.AllTags(),
		})
	}
	content := snapshot.RenderSummary(entries, time.Now())
	e.writer.PutSummary(ctx, content, "Update bookmarks summary")
}
