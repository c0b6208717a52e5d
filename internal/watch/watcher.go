// Package watch reports changes to a schema and the documents validated
// against it.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/antoniopresto/wasm-validator/internal/fs"
)

const debounceDuration = 100 * time.Millisecond

// Event describes the files that changed during one debounce window.
type Event struct {
	// SchemaChanged is set when the schema file itself was written. Every
	// document then needs validating again.
	SchemaChanged bool
	// Documents lists the documents that were written, sorted.
	Documents []string
}

// eventWatcher is the part of fsnotify.Watcher used here.
type eventWatcher interface {
	Add(name string) error
	Close() error
	Events() chan fsnotify.Event
	Errors() chan error
}

type fsnotifyWatcher struct {
	*fsnotify.Watcher
}

func (w *fsnotifyWatcher) Events() chan fsnotify.Event { return w.Watcher.Events }
func (w *fsnotifyWatcher) Errors() chan error          { return w.Watcher.Errors }

func newFSNotifyWatcher() (eventWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsnotifyWatcher{w}, nil
}

// Watcher monitors a schema and its documents for changes.
type Watcher struct {
	schema string
	files  map[string]bool // Documents named explicitly
	dirs   []string        // Directories whose documents are watched
	logger *slog.Logger
	Ready  chan struct{}

	newWatcher func() (eventWatcher, error)

	mu      sync.Mutex
	pending *Event
}

// New creates a Watcher for schemaPath and the documents named by targets,
// which may be files or directories.
func New(schemaPath string, targets []string, logger *slog.Logger) (*Watcher, error) {
	schema, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		schema:     schema,
		files:      make(map[string]bool),
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		newWatcher: newFSNotifyWatcher,
	}
	for _, t := range targets {
		abs, err := filepath.Abs(t)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			w.dirs = append(w.dirs, abs)
		} else {
			w.files[abs] = true
		}
	}
	return w, nil
}

// Watch calls callback after each burst of relevant changes. It blocks until
// ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, callback func(Event)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addAll(watcher); err != nil {
		return err
	}

	w.logger.Info("Watching for changes", "schema", w.schema)
	if w.Ready != nil {
		close(w.Ready)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors():
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if !w.handleEvent(watcher, event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, func() {
				if ev, ok := w.flush(); ok {
					callback(ev)
				}
			})
		}
	}
}

// addAll watches the schema's directory, the directories holding named
// documents, and every watched directory tree.
func (w *Watcher) addAll(watcher eventWatcher) error {
	parents := []string{filepath.Dir(w.schema)}
	for f := range w.files {
		parents = append(parents, filepath.Dir(f))
	}
	slices.Sort(parents)
	for _, p := range slices.Compact(parents) {
		if err := watcher.Add(p); err != nil {
			return err
		}
	}
	for _, d := range w.dirs {
		if err := w.addRecursive(watcher, d); err != nil {
			return err
		}
	}
	return nil
}

// handleEvent records a relevant change and reports whether there was one.
// New directories below a watched tree are watched too.
func (w *Watcher) handleEvent(watcher eventWatcher, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if w.inWatchedDir(event.Name) {
				if err := w.addRecursive(watcher, event.Name); err != nil {
					w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return false
		}
	}

	path := filepath.Clean(event.Name)
	switch {
	case path == w.schema:
		w.record(func(ev *Event) { ev.SchemaChanged = true })
	case w.files[path], w.inWatchedDir(path) && fs.DocumentFormat(path) != fs.FormatUnknown:
		w.record(func(ev *Event) {
			if !slices.Contains(ev.Documents, path) {
				ev.Documents = append(ev.Documents, path)
			}
		})
	default:
		return false
	}
	w.logger.Debug("Change detected", "path", path)
	return true
}

func (w *Watcher) record(update func(*Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		w.pending = &Event{}
	}
	update(w.pending)
}

// flush returns and clears the changes recorded so far.
func (w *Watcher) flush() (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return Event{}, false
	}
	ev := *w.pending
	w.pending = nil
	slices.Sort(ev.Documents)
	return ev, true
}

func (w *Watcher) inWatchedDir(path string) bool {
	for _, d := range w.dirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addRecursive adds root and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(watcher eventWatcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
