// Package watch re-runs a callback when the web interface sources change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces editor save bursts.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches one directory.
type Watcher struct {
	Dir      string
	Debounce time.Duration
	// Ignore returns true for paths whose changes must not trigger fn.
	Ignore func(path string) bool
	Log    *zap.Logger
}

// IgnoreGenerated skips gzip leftovers, editor temp files and the checksum
// file written by the build itself.
// A checksumName given as a path is matched by its base name.
func IgnoreGenerated(checksumName string) func(string) bool {
	checksumName = filepath.Base(checksumName)
	return func(path string) bool {
		base := filepath.Base(path)
		switch {
		case base == checksumName,
			strings.HasSuffix(base, ".gz"),
			strings.HasSuffix(base, "~"),
			strings.HasSuffix(base, ".swp"),
			strings.HasPrefix(base, ".#"):
			return true
		}
		return false
	}
}

// Run blocks until ctx is done, calling fn after each debounced burst of
// changes. Errors from fn are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}
	log.Info("watching web sources", zap.String("dir", w.Dir))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.Ignore != nil && w.Ignore(ev.Name) {
				continue
			}
			log.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
			pending = true

		case <-timer.C:
			pending = false
			if err := fn(ctx); err != nil {
				log.Error("rebuild failed", zap.Error(err))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}
