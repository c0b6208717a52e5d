package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEventWatcher struct {
	AddFunc    func(name string) error
	added      []string
	EventsChan chan fsnotify.Event
	ErrorsChan chan error
}

func (m *mockEventWatcher) Add(name string) error {
	m.added = append(m.added, name)
	if m.AddFunc != nil {
		return m.AddFunc(name)
	}
	return nil
}

func (m *mockEventWatcher) Close() error                { return nil }
func (m *mockEventWatcher) Events() chan fsnotify.Event { return m.EventsChan }
func (m *mockEventWatcher) Errors() chan error          { return m.ErrorsChan }

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// layout creates schema.json, a docs directory with one document and a
// standalone document, and returns their paths.
func layout(t *testing.T) (schema, docsDir, single string) {
	t.Helper()
	root := t.TempDir()
	schema = filepath.Join(root, "schema.json")
	docsDir = filepath.Join(root, "docs")
	single = filepath.Join(root, "single.yaml")
	require.NoError(t, os.WriteFile(schema, []byte(`{"type":"object"}`), 0o600))
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "a.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(single, []byte("a: 1\n"), 0o600))
	return schema, docsDir, single
}

func startWatching(t *testing.T, w *Watcher) <-chan Event {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	events := make(chan Event, 10)
	go func() {
		_ = w.Watch(ctx, func(e Event) { events <- e })
	}()

	select {
	case <-w.Ready:
	case <-time.After(time.Second):
		t.Fatal("watcher did not become ready in time")
	}
	return events
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return Event{}
	}
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	t.Run("Schema Change", func(t *testing.T) {
		t.Parallel()
		schema, docs, single := layout(t)
		w, err := New(schema, []string{docs, single}, discard)
		require.NoError(t, err)
		events := startWatching(t, w)

		require.NoError(t, os.WriteFile(schema, []byte(`{"type":"array"}`), 0o600))

		ev := waitEvent(t, events)
		assert.True(t, ev.SchemaChanged)
		assert.Empty(t, ev.Documents)
	})

	t.Run("Document Change", func(t *testing.T) {
		t.Parallel()
		schema, docs, single := layout(t)
		w, err := New(schema, []string{docs, single}, discard)
		require.NoError(t, err)
		events := startWatching(t, w)

		doc := filepath.Join(docs, "a.json")
		require.NoError(t, os.WriteFile(doc, []byte(`{"x":1}`), 0o600))
		require.NoError(t, os.WriteFile(single, []byte("a: 2\n"), 0o600))

		ev := waitEvent(t, events)
		assert.False(t, ev.SchemaChanged)
		assert.Equal(t, []string{doc, single}, ev.Documents)
	})

	t.Run("New Document In New Directory", func(t *testing.T) {
		t.Parallel()
		schema, docs, _ := layout(t)
		w, err := New(schema, []string{docs}, discard)
		require.NoError(t, err)
		events := startWatching(t, w)

		sub := filepath.Join(docs, "nested")
		require.NoError(t, os.Mkdir(sub, 0o755))
		// Give the watcher time to pick up the new directory.
		time.Sleep(50 * time.Millisecond)
		doc := filepath.Join(sub, "b.yml")
		require.NoError(t, os.WriteFile(doc, []byte("b: 1\n"), 0o600))

		ev := waitEvent(t, events)
		assert.Contains(t, ev.Documents, doc)
	})

	t.Run("Context Cancellation", func(t *testing.T) {
		t.Parallel()
		schema, docs, _ := layout(t)
		w, err := New(schema, []string{docs}, discard)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Watch(ctx, func(Event) {}) }()
		<-w.Ready
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("watcher did not stop on context cancellation")
		}
	})
}

func TestNew_MissingTarget(t *testing.T) {
	t.Parallel()
	schema, _, _ := layout(t)

	_, err := New(schema, []string{filepath.Join(t.TempDir(), "missing")}, discard)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHandleEvent(t *testing.T) {
	t.Parallel()
	schema, docs, single := layout(t)
	w, err := New(schema, []string{docs, single}, discard)
	require.NoError(t, err)
	mock := &mockEventWatcher{}

	assert.False(t, w.handleEvent(mock, fsnotify.Event{Name: schema, Op: fsnotify.Chmod}))
	assert.False(t, w.handleEvent(mock, fsnotify.Event{Name: filepath.Join(docs, "notes.txt"), Op: fsnotify.Write}))
	assert.False(t, w.handleEvent(mock, fsnotify.Event{Name: filepath.Join(filepath.Dir(schema), "other.json"), Op: fsnotify.Write}))
	_, ok := w.flush()
	assert.False(t, ok)

	assert.True(t, w.handleEvent(mock, fsnotify.Event{Name: filepath.Join(docs, "b.json"), Op: fsnotify.Create}))
	assert.True(t, w.handleEvent(mock, fsnotify.Event{Name: filepath.Join(docs, "b.json"), Op: fsnotify.Write}))
	assert.True(t, w.handleEvent(mock, fsnotify.Event{Name: single, Op: fsnotify.Write}))
	assert.True(t, w.handleEvent(mock, fsnotify.Event{Name: schema, Op: fsnotify.Write}))

	ev, ok := w.flush()
	require.True(t, ok)
	assert.True(t, ev.SchemaChanged)
	assert.Equal(t, []string{filepath.Join(docs, "b.json"), single}, ev.Documents)

	_, ok = w.flush()
	assert.False(t, ok)
}

func TestHandleEvent_NewDirectory(t *testing.T) {
	t.Parallel()
	schema, docs, _ := layout(t)
	w, err := New(schema, []string{docs}, discard)
	require.NoError(t, err)

	sub := filepath.Join(docs, "sub")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, ".hidden"), 0o755))

	mock := &mockEventWatcher{}
	assert.False(t, w.handleEvent(mock, fsnotify.Event{Name: sub, Op: fsnotify.Create}))
	assert.Equal(t, []string{sub}, mock.added)

	failing := &mockEventWatcher{AddFunc: func(string) error { return errors.New("injected add error") }}
	assert.False(t, w.handleEvent(failing, fsnotify.Event{Name: sub, Op: fsnotify.Create}))
}

func TestAddAll(t *testing.T) {
	t.Parallel()
	schema, docs, single := layout(t)
	w, err := New(schema, []string{docs, single}, discard)
	require.NoError(t, err)

	mock := &mockEventWatcher{}
	require.NoError(t, w.addAll(mock))
	// schema.json and single.yaml share a parent, which is added once.
	assert.Equal(t, []string{filepath.Dir(schema), docs}, mock.added)

	failing := &mockEventWatcher{AddFunc: func(string) error { return errors.New("injected add error") }}
	assert.Error(t, w.addAll(failing))
}

func TestWatch_Errors(t *testing.T) {
	t.Parallel()

	t.Run("Factory Error", func(t *testing.T) {
		t.Parallel()
		schema, docs, _ := layout(t)
		w, err := New(schema, []string{docs}, discard)
		require.NoError(t, err)
		w.newWatcher = func() (eventWatcher, error) { return nil, errors.New("factory error") }

		assert.ErrorContains(t, w.Watch(context.Background(), nil), "factory error")
	})

	t.Run("Channel Closure", func(t *testing.T) {
		t.Parallel()
		schema, docs, _ := layout(t)
		w, err := New(schema, []string{docs}, discard)
		require.NoError(t, err)

		eventsChan := make(chan fsnotify.Event)
		errorsChan := make(chan error)
		w.newWatcher = func() (eventWatcher, error) {
			return &mockEventWatcher{EventsChan: eventsChan, ErrorsChan: errorsChan}, nil
		}

		done := make(chan error, 1)
		go func() { done <- w.Watch(context.Background(), func(Event) {}) }()
		<-w.Ready

		errorsChan <- errors.New("injected error")
		close(eventsChan)
		assert.NoError(t, <-done)
	})
}
