// Package watch re-runs the analysis whenever the export file changes.
// It watches the file's directory so editors and exporters that replace
// the file (write-then-rename) still trigger a refresh.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces bursts of write events into one refresh. Exporters
// often write the CSV in several chunks.
const debounce = 500 * time.Millisecond

// Watcher triggers callbacks when the watched export file changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string

	Changes chan string // emits the export path after each settled change
	Errors  chan error
}

// New creates a watcher for the export file at path.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve export path: %w", err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      abs,
		Changes:   make(chan string, 1),
		Errors:    make(chan error, 10),
	}, nil
}

// Run pumps filesystem events until ctx is cancelled. Write, create, and
// rename events on the export file are debounced and forwarded as one
// change each.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			select {
			case w.Changes <- w.path:
			default: // a refresh is already pending
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
