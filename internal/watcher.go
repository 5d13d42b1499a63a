package internal

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ManifestWatcher watches a batch manifest file for changes so `fixel
// batch --watch` can re-generate the fixture set. The parent directory is
// watched rather than the file itself: editors replace files via rename,
// which would silently detach a direct file watch.
type ManifestWatcher struct {
	watcher  *fsnotify.Watcher
	manifest string
	events   chan string
	errors   chan error
	done     chan bool
}

// NewManifestWatcher starts watching the manifest at path.
func NewManifestWatcher(path string) (*ManifestWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &ManifestWatcher{
		watcher:  fsWatcher,
		manifest: abs,
		events:   make(chan string, 16),
		errors:   make(chan error, 4),
		done:     make(chan bool, 1),
	}

	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	go w.processEvents()

	return w, nil
}

// processEvents filters raw fsnotify events down to changes of the
// manifest file itself.
func (w *ManifestWatcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.manifest {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			select {
			case w.events <- w.manifest:
			default:
				// Event channel is full, drop event
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Error channel is full, drop error
			}

		case <-w.done:
			return
		}
	}
}

// Events returns the channel of manifest-change notifications.
func (w *ManifestWatcher) Events() <-chan string {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *ManifestWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and cleans up resources.
func (w *ManifestWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
