package tokenstore

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the credential file of a FileStore so a long-running
// console notices when another process logs in or out. Events coalesce to a
// simple "slot changed" signal; consumers re-read the store and re-evaluate
// the session.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// NewWatcher starts watching the store's credential file. The parent
// directory must exist; the file itself may not, since logout removes it.
func NewWatcher(store *FileStore) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: rename-based atomic writes and
	// removals would otherwise detach the watch.
	dir := filepath.Dir(store.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch token directory: %w", err)
	}

	w := &Watcher{
		watcher: fsw,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	name := filepath.Base(store.Path())
	go w.run(name)

	return w, nil
}

// Changes returns a channel receiving a signal whenever the credential slot
// changes on disk. Signals are coalesced; a pending one is never duplicated.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run(name string) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
