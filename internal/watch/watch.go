// Package watch triggers a reload when any of a set of files changes.
//
// Parent directories are watched rather than the files themselves, so a
// file replaced by rename (as editors and download tools do) is still seen.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/neo/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last change
// before reloading.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc rebuilds whatever depends on the watched files. An error is
// logged and the watcher keeps running.
type ReloadFunc func() error

// Watcher coalesces bursts of file events into one reload call. Reloads run
// one at a time on a single worker; changes seen during a reload queue at
// most one more.
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	reload   ReloadFunc
	debounce time.Duration
	pending  chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New watches files and calls reload after they change.
func New(files []string, reload ReloadFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		watcher:  fw,
		reload:   reload,
		debounce: DefaultDebounce,
		pending:  make(chan struct{}, 1),
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "resolve %s", f)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "watch %s", dir)
		}
	}
	return w, nil
}

// Run handles events until ctx is done, then closes the watcher. It returns
// after any reload in progress has finished.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer w.stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.reloadLoop(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			logger.Logger.Debugw("dataset changed", "file", event.Name, "op", event.Op.String())
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Logger.Warnw("watcher error", "error", err)
		}
	}
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.pending <- struct{}{}:
		default:
			// a reload is already queued and will read the latest files
		}
	})
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.pending:
			if err := w.reload(); err != nil {
				logger.Logger.Warnw("reload failed, keeping previous data", "error", err)
				continue
			}
			logger.Logger.Infow("reloaded datasets")
		}
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.watcher.Close()
}
