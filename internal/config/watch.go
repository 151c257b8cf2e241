package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceWindow drops repeat events for the same file inside this window;
// editors often write a file in several steps.
const DebounceWindow = 100 * time.Millisecond

// Watcher reports changed realm and script files in the watched
// directories. Events carries the changed file's path.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches dirs until Close.
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isRealmFile(event.Name) && !isScriptFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < DebounceWindow {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// The previous error has not been read yet.
			}
		case <-w.closeCh:
			return
		}
	}
}

func isRealmFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
