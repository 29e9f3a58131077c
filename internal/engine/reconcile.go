package engine

import (
	"context"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
)

// OrphanPredicate decides whether a repository path is plausibly a
// bookmark snapshot file. It is a heuristic by design: JSON-suffixed
// paths minus a small exclusion list of known non-bookmark filenames,
// overridable for callers that know better.
type OrphanPredicate func(filePath string) bool

// DefaultOrphanPredicate builds the standard heuristic with the given
// excluded base names.
func DefaultOrphanPredicate(excludes []string) OrphanPredicate {
	excluded := make(map[string]bool, len(excludes))
	for _, name := range excludes {
		excluded[strings.ToLower(name)] = true
	}
	return func(filePath string) bool {
		if !strings.HasSuffix(filePath, ".json") {
			return false
		}
		return !excluded[strings.ToLower(path.Base(filePath))]
	}
}

// Reconcile deletes snapshot files in the repository collection that
// no share references anymore. Deletions are attempted independently;
// one failure does not stop the rest, except an authentication failure
// which aborts the remaining items. Returns the number of files
// actually removed.
//
// This pass is deliberately not part of every sync: it runs after a
// folder delete/rename cascade or on explicit request, which bounds
// its blast radius.
func (e *Engine) Reconcile(ctx context.Context, isCandidate OrphanPredicate) (int, error) {
	if isCandidate == nil {
		isCandidate = DefaultOrphanPredicate(e.config.OrphanExcludes)
	}

	entries, err := e.writer.ListTree(ctx)
	if err != nil {
		e.guard.InterceptError(err)
		return 0, err
	}

	referenced := e.registry.ReferencedPaths(e.repo.Slug())

	removed := 0
	for _, entry := range entries {
		if !isCandidate(entry.Path) || referenced[entry.Path] {
			continue
		}

		if err := e.writer.DeletePath(ctx, entry.Path, "Remove orphaned bookmark snapshot"); err != nil {
			if e.guard.InterceptError(err) {
				return removed, err
			}
			log.WithError(err).WithField("path", entry.Path).Warn("orphan delete failed")
			continue
		}
		log.WithField("path", entry.Path).Info("removed orphaned snapshot")
		removed++
	}
	return removed, nil
}
