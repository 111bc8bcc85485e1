package gekko

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// textureWatcher turns file writes into reload requests. Directories are watched
// rather than files so editors that replace files on save keep working.
type textureWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	logger  Logger

	mu      sync.Mutex
	byPath  map[string][]AssetId
	dirs    map[string]bool
	pending map[AssetId]bool
}

func newTextureWatcher(logger Logger) (*textureWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	w := &textureWatcher{
		watcher: fw,
		done:    make(chan struct{}),
		logger:  logger,
		byPath:  make(map[string][]AssetId),
		dirs:    make(map[string]bool),
		pending: make(map[AssetId]bool),
	}
	go w.run()
	return w, nil
}

func (w *textureWatcher) watch(id AssetId, paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		p = filepath.Clean(p)
		w.byPath[p] = append(w.byPath[p], id)
		dir := filepath.Dir(p)
		if !w.dirs[dir] {
			if err := w.watcher.Add(dir); err != nil {
				w.logger.Warnf("Texture hot reload cannot watch %s: %v", dir, err)
			} else {
				w.dirs[dir] = true
			}
		}
	}
}

func (w *textureWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.touch(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("Texture watcher: %v", err)
		}
	}
}

func (w *textureWatcher) touch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range w.byPath[filepath.Clean(path)] {
		w.pending[id] = true
	}
}

// drain returns the textures whose files changed since the last call.
func (w *textureWatcher) drain() []AssetId {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	ids := make([]AssetId, 0, len(w.pending))
	for id := range w.pending {
		ids = append(ids, id)
	}
	clear(w.pending)
	return ids
}

func (w *textureWatcher) close() {
	close(w.done)
	w.watcher.Close()
}
