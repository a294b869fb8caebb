package server

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// changeWatcher logs debounced change notices for files under root.
type changeWatcher struct {
	root     string
	debounce time.Duration
	log      *zap.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	pending string
}

func startWatcher(root string, debounce time.Duration, l *zap.Logger) (*changeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cw := &changeWatcher{
		root:     root,
		debounce: debounce,
		log:      l,
		watcher:  w,
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		// Skip hidden directories like .git
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	cw.wg.Add(1)
	go cw.loop()
	return cw, nil
}

func (cw *changeWatcher) loop() {
	defer cw.wg.Done()
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod != 0 {
				continue
			}
			// Handle new directories
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = cw.watcher.Add(event.Name)
				}
			}
			cw.schedule(event.Name)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule reports the last changed file once events settle.
func (cw *changeWatcher) schedule(name string) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.pending = name
	if cw.timer != nil {
		cw.timer.Reset(cw.debounce)
		return
	}
	cw.timer = time.AfterFunc(cw.debounce, cw.flush)
}

func (cw *changeWatcher) flush() {
	cw.mu.Lock()
	name := cw.pending
	cw.pending = ""
	cw.mu.Unlock()

	if name != "" {
		cw.log.Info("changed: " + relPath(cw.root, name))
	}
}

func (cw *changeWatcher) Close() error {
	err := cw.watcher.Close()
	cw.wg.Wait()

	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	return err
}
