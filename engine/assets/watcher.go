package assets

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prism/engine/core"
)

const DEFAULT_RELOAD_DEBOUNCE = 150 * time.Millisecond

// Watcher reloads the active model when its file changes on disk. Editors
// tend to write a file in several steps, so bursts of events are collapsed
// into one reload.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	submit   func(path string)
	debounce time.Duration

	mu    sync.Mutex
	path  string
	dir   string
	timer *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(submit func(path string)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		submit:   submit,
		debounce: DEFAULT_RELOAD_DEBOUNCE,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Watch points the watcher at path, replacing the previous file.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir != w.dir {
		if w.dir != "" {
			if err := w.fsnotify.Remove(w.dir); err != nil {
				core.LogDebug("unwatch %s: %s", w.dir, err)
			}
		}
		if err := w.fsnotify.Add(dir); err != nil {
			w.dir = ""
			w.path = ""
			return err
		}
		w.dir = dir
	}
	w.path = abs
	core.LogDebug("watching %s for changes", abs)
	return nil
}

func (w *Watcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFileEvent(e.Name)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("file watcher: %s", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleFileEvent(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if abs != w.path {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		core.LogInfo("%s changed, reloading", abs)
		w.submit(abs)
	})
}

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}
