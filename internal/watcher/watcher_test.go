package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
		gone      bool
	}{
		{EventTypeCreated, "created", false},
		{EventTypeModified, "modified", false},
		{EventTypeDeleted, "deleted", true},
		{EventTypeRenamed, "renamed", true},
		{EventType(42), "unknown", false},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
			assert.Equal(t, tc.gone, tc.eventType.Gone())
		})
	}
}

func TestEventTypeOf(t *testing.T) {
	assert.Equal(t, EventTypeCreated, eventTypeOf(fsnotify.Create))
	assert.Equal(t, EventTypeModified, eventTypeOf(fsnotify.Write))
	assert.Equal(t, EventTypeDeleted, eventTypeOf(fsnotify.Remove))
	assert.Equal(t, EventTypeRenamed, eventTypeOf(fsnotify.Rename))
	assert.Equal(t, EventTypeDeleted, eventTypeOf(fsnotify.Remove|fsnotify.Write))
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.NotNil(t, watcher.logger)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherAddFilterAndHandler(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(IgnoreFilter([]string{".*"}))
	watcher.AddFilter(NotUnderFilter("build"))
	assert.Len(t, watcher.filters, 2)

	assert.True(t, watcher.accept("src/sections/hero.liquid"))
	assert.False(t, watcher.accept("src/.git/HEAD"))
	assert.False(t, watcher.accept("build/sections/hero.liquid"))

	handlerCalled := false
	watcher.AddHandler(func(events []ChangeEvent) error {
		handlerCalled = true
		return nil
	})
	assert.Len(t, watcher.handlers, 1)

	for _, h := range watcher.handlers {
		require.NoError(t, h([]ChangeEvent{{Type: EventTypeCreated, Path: "a.liquid"}}))
	}
	assert.True(t, handlerCalled)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := t.TempDir()
	assert.NoError(t, watcher.AddPath(tempDir))
	assert.Error(t, watcher.AddPath(filepath.Join(tempDir, "missing")))
}

func TestAddRecursive(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"sections", "snippets/nested", ".git/objects", "components"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()
	watcher.AddFilter(IgnoreFilter([]string{".*"}))

	require.NoError(t, watcher.AddRecursive(root))

	watched := watcher.WatchList()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, filepath.Join(root, "sections"))
	assert.Contains(t, watched, filepath.Join(root, "snippets", "nested"))
	assert.Contains(t, watched, filepath.Join(root, "components"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
	assert.NotContains(t, watched, filepath.Join(root, ".git", "objects"))

	assert.Error(t, watcher.AddRecursive(filepath.Join(root, "missing")))
}

func TestFileWatcherStartStop(t *testing.T) {
	tempDir := t.TempDir()

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()
	require.NoError(t, watcher.AddRecursive(tempDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []ChangeEvent, 10)
	watcher.AddHandler(func(events []ChangeEvent) error {
		received <- events
		return nil
	})
	require.NoError(t, watcher.Start(ctx))

	file := filepath.Join(tempDir, "index.liquid")
	require.NoError(t, os.WriteFile(file, []byte("<Card/>"), 0o644))

	select {
	case events := <-received:
		require.NotEmpty(t, events)
		assert.Equal(t, file, events[0].Path)
		assert.False(t, events[0].Type.Gone())
	case <-time.After(2 * time.Second):
		t.Fatal("no events received")
	}
}

func TestFileWatcherWatchesNewDirectories(t *testing.T) {
	tempDir := t.TempDir()

	watcher, err := NewFileWatcher(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()
	require.NoError(t, watcher.AddRecursive(tempDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		paths = make(map[string]bool)
	)
	watcher.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			paths[e.Path] = true
		}
		return nil
	})
	require.NoError(t, watcher.Start(ctx))

	newDir := filepath.Join(tempDir, "sections")
	require.NoError(t, os.Mkdir(newDir, 0o755))

	require.Eventually(t, func() bool {
		for _, w := range watcher.WatchList() {
			if w == newDir {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	file := filepath.Join(newDir, "hero.liquid")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return paths[file]
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIgnoreFilter(t *testing.T) {
	filter := IgnoreFilter([]string{".*", "*.swp", "node_modules"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{"src/sections/hero.liquid", true},
		{"./src/sections/hero.liquid", true},
		{"../theme/src/a.liquid", true},
		{"src/.DS_Store", false},
		{"src/.git/config", false},
		{"src/sections/hero.liquid.swp", false},
		{"src/node_modules/x/index.js", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}

	assert.True(t, IgnoreFilter(nil)("src/.hidden"))
}

func TestNotUnderFilter(t *testing.T) {
	filter := NotUnderFilter("./build")

	testCases := []struct {
		path     string
		expected bool
	}{
		{"build", false},
		{"build/config/settings_data.json", false},
		{"src/config/settings_data.json", true},
		{"buildings/a.liquid", true},
		{"../build", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestOnlyFilter(t *testing.T) {
	filter := OnlyFilter("build/config/settings_data.json")

	assert.True(t, filter("build/config/settings_data.json"))
	assert.True(t, filter("./build/config/settings_data.json"))
	assert.False(t, filter("build/config/settings_schema.json"))
	assert.False(t, OnlyFilter()("anything"))
}

func TestDebouncer(t *testing.T) {
	debouncer := newDebouncer(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	debouncer.done = ctx.Done()

	go debouncer.start(ctx)

	debouncer.events <- ChangeEvent{Path: "a.liquid", Type: EventTypeCreated}
	debouncer.events <- ChangeEvent{Path: "a.liquid", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "b.liquid", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "a.liquid", Type: EventTypeDeleted}

	select {
	case events := <-debouncer.output:
		require.Len(t, events, 2)
		assert.Equal(t, "a.liquid", events[0].Path)
		assert.Equal(t, EventTypeDeleted, events[0].Type)
		assert.Equal(t, "b.liquid", events[1].Path)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer did not flush")
	}
}

func TestCoalesce(t *testing.T) {
	assert.Empty(t, coalesce(nil))

	events := coalesce([]ChangeEvent{
		{Path: "x", Type: EventTypeCreated},
		{Path: "y", Type: EventTypeCreated},
		{Path: "x", Type: EventTypeModified},
	})
	assert.Equal(t, []ChangeEvent{
		{Path: "x", Type: EventTypeModified},
		{Path: "y", Type: EventTypeCreated},
	}, events)
}

func TestFlushWithoutPending(t *testing.T) {
	debouncer := newDebouncer(10 * time.Millisecond)
	debouncer.flush()

	select {
	case <-debouncer.output:
		t.Fatal("empty flush produced a batch")
	default:
	}
}

func TestRelative(t *testing.T) {
	filter := Relative("/home/dev/.themes/shop/src", IgnoreFilter([]string{".*"}))

	assert.True(t, filter("/home/dev/.themes/shop/src/sections/a.liquid"))
	assert.False(t, filter("/home/dev/.themes/shop/src/.git/HEAD"))
	assert.False(t, IgnoreFilter([]string{".*"})("/home/dev/.themes/shop/src/sections/a.liquid"))
}
