package engine

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/gitmarks/gitmarks/internal/model"
	"github.com/gitmarks/gitmarks/internal/storage"
)

// Watcher observes the on-disk bookmark tree, diffs each new state
// against the previous one, and publishes the resulting tree events.
// It implements TreeSource so the dispatcher always sees the state the
// events were derived from.
type Watcher struct {
	storage  storage.Storage
	treePath string
	settle   time.Duration

	mu      sync.RWMutex
	current *model.Store

	events chan model.TreeEvent
}

// WatcherParams holds what a Watcher needs. Settle is the quiet period
// after the last filesystem notification before the tree is reloaded;
// zero picks a default.
type WatcherParams struct {
	Storage  storage.Storage
	TreePath string
	Settle   time.Duration
}

// NewWatcher loads the initial tree and prepares the watcher.
func NewWatcher(params WatcherParams) (*Watcher, error) {
	initial, err := params.Storage.Load()
	if err != nil {
		return nil, err
	}
	settle := params.Settle
	if settle <= 0 {
		settle = 250 * time.Millisecond
	}
	return &Watcher{
		storage:  params.Storage,
		treePath: params.TreePath,
		settle:   settle,
		current:  initial,
		events:   make(chan model.TreeEvent, 64),
	}, nil
}

// Current returns the tree state matching the events emitted so far.
func (w *Watcher) Current() *model.Store {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Events returns the event stream. The channel is closed when Run
// returns.
func (w *Watcher) Events() <-chan model.TreeEvent {
	return w.events
}

// Run watches the tree file until ctx is cancelled. Editors and the
// storage layer replace the file rather than appending, so the watch
// is on the containing directory with notifications filtered to the
// tree path. Bursts of writes are absorbed by the settle timer.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.treePath)); err != nil {
		return err
	}

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.treePath) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(w.settle)
				settleC = settle.C
			} else {
				if !settle.Stop() {
					select {
					case <-settle.C:
					default:
					}
				}
				settle.Reset(w.settle)
			}

		case <-settleC:
			settle = nil
			settleC = nil
			w.reload(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("filesystem watch error")
		}
	}
}

// reload diffs the freshly loaded tree against the previous state and
// emits the difference. The current snapshot is swapped before any
// event goes out so consumers reading Current() see the tree the
// events describe.
func (w *Watcher) reload(ctx context.Context) {
	next, err := w.storage.Load()
	if err != nil {
		log.WithError(err).Warn("tree reload failed")
		return
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	w.mu.Unlock()

	changes := model.DiffStores(prev, next)
	if len(changes) == 0 {
		return
	}
	log.WithField("events", len(changes)).Debug("tree changed")

	for _, ev := range changes {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
