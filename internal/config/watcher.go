package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// Watcher reloads a thermo.CoreConfig from disk whenever the backing file
// changes, debouncing rapid successive writes the way an editor's
// save-on-every-keystroke would otherwise trigger.
type Watcher struct {
	path    string
	Updates <-chan thermo.CoreConfig

	updates  chan thermo.CoreConfig
	done     chan struct{}
	stopOnce sync.Once
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a Watcher for the config file at path.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan thermo.CoreConfig, 4)
	w := &Watcher{path: path, Updates: ch, updates: ch, done: make(chan struct{}), watcher: fw}
	return w, nil
}

// Start begins watching the config file's directory for changes to it.
func (w *Watcher) Start() error {
	dir := parentDir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and its update channel. Safe to call multiple
// times.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		<-w.done
		close(w.updates)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	const debounce = 150 * time.Millisecond
	var pending bool
	var lastEvent time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = true
				lastEvent = time.Now()
			}

		case <-ticker.C:
			if !pending || time.Since(lastEvent) < debounce {
				continue
			}
			pending = false
			if cfg, err := Load(w.path); err == nil {
				select {
				case w.updates <- cfg:
				default:
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
