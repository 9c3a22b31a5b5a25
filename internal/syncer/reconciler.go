package syncer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dbsmedya/intersync/internal/logger"
)

// DirectoryReconciler resets an output directory so a full export
// reflects only current remote state. The directory itself is kept;
// only its children are removed.
type DirectoryReconciler struct {
	log *logger.Logger
}

// NewReconciler creates a DirectoryReconciler.
func NewReconciler(log *logger.Logger) *DirectoryReconciler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &DirectoryReconciler{log: log}
}

// Reset removes all children of dir, creating dir if it does not exist.
// In dry run the children are enumerated but nothing is removed. It
// returns the names of the entries removed (or that would be removed).
func (r *DirectoryReconciler) Reset(dir string, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if dryRun {
				return nil, nil
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", dir, err)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	removed := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if dryRun {
			r.log.Infow("Dry run: would remove", "path", path)
			removed = append(removed, entry.Name())
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, entry.Name())
	}

	sort.Strings(removed)
	if len(removed) > 0 {
		r.log.Debugw("Directory reset", "dir", dir, "removed", len(removed), "dry_run", dryRun)
	}
	return removed, nil
}
