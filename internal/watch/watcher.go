// Package watch follows a single document on disk and reports every content
// change, telling the engine's own writes apart from hand edits.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/storage"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reading the file.
const DefaultDebounce = 200 * time.Millisecond

// KnownChecksums returns the checksum of the last version the engine wrote.
type KnownChecksums interface {
	LastChecksum(path string) (string, error)
}

// Change is a new version of the watched document.
type Change struct {
	Path     string
	Checksum string
	External bool // the content does not match the engine's last write
}

// Watcher follows one document.
type Watcher struct {
	store    storage.Provider
	file     string
	known    KnownChecksums
	logger   *slog.Logger
	debounce time.Duration
}

// New creates a watcher for file inside store. known may be nil, in which
// case every change is reported as external.
func New(store storage.Provider, file string, known KnownChecksums, logger *slog.Logger) *Watcher {
	return &Watcher{
		store:    store,
		file:     file,
		known:    known,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Run watches the document's directory until ctx is cancelled, calling cb
// after each settled change. The directory is watched rather than the file
// because atomic writes replace the file's inode.
func (w *Watcher) Run(ctx context.Context, cb func(Change)) error {
	target, err := w.store.Abs(w.file)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("watch: create dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}

	lastSeen := w.current()
	w.logger.Info("watcher: started", slog.String("path", target))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			fire = timer.C
			return
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			cs := w.current()
			if cs == "" || cs == lastSeen {
				continue
			}
			lastSeen = cs
			change := Change{Path: w.file, Checksum: cs, External: w.isExternal(cs)}
			w.logger.Debug("watcher: document changed",
				slog.String("path", w.file),
				slog.Bool("external", change.External))
			if cb != nil {
				cb(change)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// current returns the checksum of the document on disk, or "" when it cannot
// be read.
func (w *Watcher) current() string {
	data, err := w.store.Read(w.file)
	if err != nil {
		return ""
	}
	return document.Checksum(string(data))
}

func (w *Watcher) isExternal(cs string) bool {
	if w.known == nil {
		return true
	}
	known, err := w.known.LastChecksum(w.file)
	if err != nil {
		w.logger.Warn("watcher: checksum lookup failed", slog.String("error", err.Error()))
		return true
	}
	return known != cs
}
