package document

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher surfaces on-disk changes to watched files. It runs its own
// goroutine; the onChange callback is responsible for marshalling the event
// back onto the UI event loop before touching the store.
type Watcher struct {
	fs       *fsnotify.Watcher
	onChange func(path string)
	logger   *zap.Logger
	done     chan struct{}
}

// NewWatcher creates a file watcher delivering write/create events for
// watched paths to onChange.
func NewWatcher(onChange func(path string), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fs,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch adds a file path to the watch set.
func (w *Watcher) Watch(path string) error {
	return w.fs.Add(path)
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// Editors save with either in-place writes or rename-and-replace.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.onChange(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
