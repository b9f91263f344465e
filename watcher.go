package folio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Invalidator is anything holding derived state that a content change makes
// stale. *IndexCache implements it.
type Invalidator interface {
	Invalidate()
}

// ContentWatcher invalidates a cache whenever a markdown file in the content
// directory is created, written, renamed or removed. Bursts of events are
// collapsed into one invalidation after the debounce interval.
type ContentWatcher struct {
	dir      string
	target   Invalidator
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewContentWatcher starts watching dir. The directory must exist.
func NewContentWatcher(dir string, target Invalidator, debounce time.Duration) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve content path: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch content directory %s: %w", absDir, err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &ContentWatcher{dir: absDir, target: target, watcher: watcher, debounce: debounce}, nil
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *ContentWatcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	slog.Info("Watching content directory", slog.String("path", w.dir))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsMarkdownFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			slog.Debug("Content change detected", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.target.Invalidate()
			slog.Info("Content changed, index invalidated", slog.String("path", w.dir))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Content watcher error", slog.String("error", err.Error()))
		}
	}
}
