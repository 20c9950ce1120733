package tokenstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change signal received")
	}
}

func TestWatcherObservesSaveAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	w, err := NewWatcher(store)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, store.Save("tok-1"))
	waitForChange(t, w)

	require.NoError(t, store.Clear())
	waitForChange(t, w)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "token"))
	require.NoError(t, err)

	w, err := NewWatcher(store)
	require.NoError(t, err)
	defer w.Close()

	other, err := NewFileStore(filepath.Join(dir, "other"))
	require.NoError(t, err)
	require.NoError(t, other.Save("x"))

	select {
	case <-w.Changes():
		t.Fatal("unexpected signal for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
