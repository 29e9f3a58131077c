package engine

import (
	"context"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/gitmarks/gitmarks/internal/remote"
	"github.com/gitmarks/gitmarks/internal/share"
)

// BatchResult aggregates the outcome of a sync-all pass.
type BatchResult struct {
	Successes int
	Failures  int
	// Skipped counts folders left untouched after an authentication
	// failure aborted the batch.
	Skipped     int
	AuthAborted bool
}

// ProgressFunc is called after each folder finishes.
// completed is the number of folders processed so far, total the count.
type ProgressFunc func(completed, total int)

// SyncAll pushes every linked folder, each through its own independent
// write sequence. Per-folder failures are counted and the batch keeps
// going, except for an authentication failure: every further call
// would fail identically, so the remaining folders are skipped.
func (e *Engine) SyncAll(ctx context.Context, onProgress ProgressFunc) BatchResult {
	shares := e.registry.All()
	sort.Slice(shares, func(i, j int) bool { return shares[i].DisplayName < shares[j].DisplayName })

	var result BatchResult
	if len(shares) == 0 {
		return result
	}

	concurrency := e.config.SyncConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	jobs := make(chan share.FolderShare, len(shares))
	var wg sync.WaitGroup

	var mu sync.Mutex
	completed := 0
	aborted := false

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				mu.Lock()
				stop := aborted
				mu.Unlock()
				if stop {
					mu.Lock()
					result.Skipped++
					mu.Unlock()
					continue
				}

				err := e.SyncFolder(ctx, s.FolderID)

				mu.Lock()
				completed++
				if err != nil {
					result.Failures++
					if remote.IsAuth(err) {
						aborted = true
						result.AuthAborted = true
					}
					log.WithError(err).WithField("folder", s.DisplayName).Warn("sync failed")
				} else {
					result.Successes++
				}
				if onProgress != nil {
					onProgress(completed, len(shares))
				}
				mu.Unlock()
			}
		}()
	}

	for _, s := range shares {
		jobs <- s
	}
	close(jobs)

	wg.Wait()
	return result
}
