// Package filewatcher provides file system monitoring adapters.
// FSNotifyWatcher implements ports.FileWatcher for the question inbox.
package filewatcher

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
// Which files matter is left to the consumer; only hidden files are dropped.
type FSNotifyWatcher struct {
	watcher *fsnotify.Watcher
	logger  ports.Logger
}

// NewFSNotifyWatcher creates a new file watcher. A nil logger drops watcher errors.
func NewFSNotifyWatcher(logger ports.Logger) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FSNotifyWatcher{watcher: w, logger: logger}, nil
}

// Watch starts monitoring the directory and emits events.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if hidden(event.Name) {
					continue
				}

				var op ports.FileOperation
				switch {
				case event.Op&fsnotify.Create == fsnotify.Create:
					op = ports.FileCreated
				case event.Op&fsnotify.Write == fsnotify.Write:
					op = ports.FileModified
				case event.Op&fsnotify.Remove == fsnotify.Remove,
					event.Op&fsnotify.Rename == fsnotify.Rename:
					op = ports.FileDeleted
				default:
					continue
				}

				select {
				case events <- ports.FileEvent{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				if w.logger != nil {
					w.logger.Warn("filewatcher", "watch error", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

// hidden reports dot files, which covers most editor swap files.
func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
