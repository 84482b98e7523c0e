package reload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RequestFunc asks for a reload cycle.
type RequestFunc func(ctx context.Context, reason string) error

// Watcher requests a reload when files under the watched paths change. Bursts
// of events (editors often write several times per save) are collapsed into one
// request per debounce window.
type Watcher struct {
	paths    []string
	debounce time.Duration
	request  RequestFunc

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over paths. Missing paths are skipped at Start.
func NewWatcher(paths []string, debounce time.Duration, request RequestFunc) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{
		paths:    paths,
		debounce: debounce,
		request:  request,
	}
}

// Start begins watching. It returns once the watcher is set up; events are
// processed in the background until ctx is canceled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		slog.Debug("Reload watcher already active")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}

	watched := 0
	for _, root := range w.paths {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			slog.Debug("Watch path does not exist, skipping", "path", root)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if isHidden(path) && path != root {
				return filepath.SkipDir
			}
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			watched++
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("failed to add directories to watcher: %w", err)
		}
	}

	w.watcher = watcher
	go w.loop(ctx, watcher)

	slog.Info("Started reload watcher", "paths", w.paths, "directories", watched, "debounce", w.debounce)
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	var (
		timer    *time.Timer
		fire     <-chan time.Time
		lastPath string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		slog.Info("Reload watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						slog.Error("Failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			slog.Debug("File system event", "event", event.Op.String(), "path", event.Name)
			lastPath = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.request(ctx, "file changed: "+lastPath); err != nil {
				slog.Error("Failed to request reload", "path", lastPath, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File system watcher error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if isHidden(event.Name) || strings.HasSuffix(event.Name, "~") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
