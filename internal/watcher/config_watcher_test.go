package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lance13c/todrec/internal/config"
)

func startWatcher(t *testing.T, path string) (*ConfigWatcher, chan *config.Config) {
	t.Helper()
	cw, err := NewConfigWatcher(path, WatcherConfig{DebounceMS: 20})
	require.NoError(t, err)

	changes := make(chan *config.Config, 8)
	cw.SetChangeCallback(func(cfg *config.Config) { changes <- cfg })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cw.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, cw.IsWatching, time.Second, 5*time.Millisecond)
	return cw, changes
}

func TestReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recorder:\n  show_highlight: true\n"), 0644))

	_, changes := startWatcher(t, path)
	// give the watch time to register
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("recorder:\n  show_highlight: false\n"), 0644))

	select {
	case cfg := <-changes:
		require.False(t, cfg.Recorder.ShowHighlight)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestIgnoresOtherFilesAndInvalidVersions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	_, changes := startWatcher(t, path)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644))

	select {
	case cfg := <-changes:
		t.Fatalf("unexpected reload: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStopEndsStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cw, err := NewConfigWatcher(path, WatcherConfig{})
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cw.debounce)

	var returned atomic.Bool
	go func() {
		_ = cw.Start(context.Background())
		returned.Store(true)
	}()
	require.Eventually(t, cw.IsWatching, time.Second, 5*time.Millisecond)

	cw.Stop()
	require.Eventually(t, returned.Load, time.Second, 5*time.Millisecond)
	require.False(t, cw.IsWatching())
}

func TestNeedsPath(t *testing.T) {
	_, err := NewConfigWatcher("", DefaultConfig())
	require.Error(t, err)
}
