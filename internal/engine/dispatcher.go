package engine

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/gitmarks/gitmarks/internal/model"
	"github.com/gitmarks/gitmarks/internal/share"
)

// TreeSource provides the current bookmark tree to the dispatcher.
type TreeSource interface {
	Current() *model.Store
}

// SyncIntent is a pending request to re-sync one linked folder. It
// lives only inside a dispatch cycle and is never persisted.
type SyncIntent struct {
	FolderID string
	Reason   model.EventKind
}

// pendingIntent tracks when an intent was last refreshed so rapid
// bursts for the same folder collapse into one sync.
type pendingIntent struct {
	intent   SyncIntent
	queuedAt time.Time
}

// Dispatcher consumes local structural change events, resolves which
// folders need re-sync or cleanup, and executes the resulting intents.
//
// Re-sync intents are coalesced per folder: only the most recent state
// matters, so a burst of events inside the debounce window produces a
// single sync. Delete cascades and rename cleanups run immediately.
type Dispatcher struct {
	engine *Engine
	source TreeSource
	clock  clockwork.Clock
	window time.Duration

	mu      sync.Mutex
	pending map[string]pendingIntent
}

// DispatcherParams holds the collaborators a Dispatcher needs.
// A nil Clock selects the real clock.
type DispatcherParams struct {
	Engine *Engine
	Source TreeSource
	Clock  clockwork.Clock
	Window time.Duration
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(params DispatcherParams) *Dispatcher {
	clock := params.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	window := params.Window
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &Dispatcher{
		engine:  params.Engine,
		source:  params.Source,
		clock:   clock,
		window:  window,
		pending: make(map[string]pendingIntent),
	}
}

// Run consumes events until ctx is cancelled, flushing due intents on
// every tick. Pending intents left at shutdown are flushed once.
func (d *Dispatcher) Run(ctx context.Context, events <-chan model.TreeEvent) {
	ticker := d.clock.NewTicker(d.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.flush(context.Background(), true)
			return

		case ev, ok := <-events:
			if !ok {
				d.flush(context.Background(), true)
				return
			}
			d.HandleEvent(ctx, ev)

		case <-ticker.Chan():
			d.flush(ctx, false)
		}
	}
}

// HandleEvent resolves one tree event into sync or cleanup work.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev model.TreeEvent) {
	registry := d.engine.Registry()

	switch ev.Kind {
	case model.NodeCreated, model.NodeModified:
		// The new leaf belongs to the nearest linked ancestor's
		// exported subtree. Stop at the first match or the root.
		d.queueNearestShare(ev.ParentID, ev.Kind)

	case model.NodeRemoved:
		if ev.ParentID != nil && registry.Get(*ev.ParentID) != nil {
			d.queue(*ev.ParentID, ev.Kind)
		}
		if ev.IsFolder {
			if s := registry.Get(ev.NodeID); s != nil {
				d.cascadeDelete(ctx, *s)
			}
		}

	case model.NodeRenamed:
		s := registry.Get(ev.NodeID)
		if s == nil {
			return
		}
		folder := d.source.Current().GetFolderByID(ev.NodeID)
		if folder == nil {
			return
		}
		result, err := registry.Rename(ev.NodeID, folder.Name)
		if err != nil {
			log.WithError(err).WithField("folder", folder.Name).Error("rename bookkeeping failed")
			return
		}
		if result.OldFilePath != "" && result.OldFilePath != result.NewFilePath {
			if err := d.engine.DeleteRemotePath(ctx, result.OldFilePath); err != nil {
				log.WithError(err).WithField("path", result.OldFilePath).Warn("stale snapshot cleanup failed")
			}
		}
		d.queue(ev.NodeID, ev.Kind)

	case model.NodeMoved:
		// Content is unchanged but exported path metadata can depend
		// on lineage, so re-push regardless.
		if registry.Get(ev.NodeID) != nil {
			d.queue(ev.NodeID, ev.Kind)
		}
	}
}

// queueNearestShare walks the ancestor chain starting at startID
// (inclusive) and queues a re-sync for the first linked folder found.
func (d *Dispatcher) queueNearestShare(startID *string, reason model.EventKind) {
	registry := d.engine.Registry()
	for _, id := range d.source.Current().FolderChain(startID) {
		if registry.Get(id) != nil {
			d.queue(id, reason)
			return
		}
	}
}

// queue records or refreshes a pending re-sync intent for the folder.
func (d *Dispatcher) queue(folderID string, reason model.EventKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[folderID] = pendingIntent{
		intent:   SyncIntent{FolderID: folderID, Reason: reason},
		queuedAt: d.clock.Now(),
	}
}

// cascadeDelete handles removal of a linked folder: exactly one remote
// delete for its file, registry unlink, then a reconciliation pass
// over the collection. Any pending re-sync for the folder is dropped.
func (d *Dispatcher) cascadeDelete(ctx context.Context, s share.FolderShare) {
	d.mu.Lock()
	delete(d.pending, s.FolderID)
	d.mu.Unlock()

	if err := d.engine.DeleteShareTarget(ctx, s); err != nil {
		log.WithError(err).WithField("folder", s.DisplayName).Warn("remote delete failed")
	}
	if err := d.engine.Registry().Unlink(s.FolderID); err != nil {
		log.WithError(err).WithField("folder", s.DisplayName).Error("unlink failed")
	}

	if s.ResourceType == share.ResourceRepo {
		if _, err := d.engine.Reconcile(ctx, nil); err != nil {
			log.WithError(err).Warn("reconciliation after delete failed")
		}
	}

	log.WithField("folder", s.DisplayName).Info("share removed after folder deletion")
}

// flush executes intents that have sat for at least the debounce
// window, or all of them when force is set.
func (d *Dispatcher) flush(ctx context.Context, force bool) {
	now := d.clock.Now()

	d.mu.Lock()
	var due []SyncIntent
	for id, p := range d.pending {
		if force || now.Sub(p.queuedAt) >= d.window {
			due = append(due, p.intent)
			delete(d.pending, id)
		}
	}
	d.mu.Unlock()

	for _, intent := range due {
		if d.engine.Registry().Get(intent.FolderID) == nil {
			// Share vanished between queue and flush (cascade).
			continue
		}
		if err := d.engine.SyncFolder(ctx, intent.FolderID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"folder": intent.FolderID,
				"reason": intent.Reason,
			}).Warn("triggered sync failed")
		}
	}
}

// PendingCount reports how many re-sync intents are queued.
func (d *Dispatcher) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
