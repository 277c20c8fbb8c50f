package file

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/murmur/internal/logger"
)

// defaultDebounce collapses the burst of events a single save produces.
const defaultDebounce = 100 * time.Millisecond

// fileWatcher calls a handler after matching file events have been quiet
// for the debounce delay.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	handler       func()
	filter        func(name string) bool
	debounceDelay time.Duration

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

type watcherConfig struct {
	Handler       func()
	Filter        func(name string) bool
	DebounceDelay time.Duration
}

func newFileWatcher(cfg watcherConfig) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = defaultDebounce
	}

	fw := &fileWatcher{
		watcher:       watcher,
		handler:       cfg.Handler,
		filter:        cfg.Filter,
		debounceDelay: cfg.DebounceDelay,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}

	go fw.watchLoop()
	return fw, nil
}

// Add adds a path to watch.
func (fw *fileWatcher) Add(path string) error {
	return fw.watcher.Add(path)
}

// Stop stops the watcher and cancels a pending handler call.
func (fw *fileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.watcher.Close() //nolint:errcheck
		<-fw.done

		fw.debounceMu.Lock()
		if fw.debounceTimer != nil {
			fw.debounceTimer.Stop()
		}
		fw.debounceMu.Unlock()
	})
}

func (fw *fileWatcher) watchLoop() {
	defer close(fw.done)
	for {
		select {
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.filter != nil && !fw.filter(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				fw.debounce()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}

// debounce restarts the timer on each event.
func (fw *fileWatcher) debounce() {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceDelay, func() {
		select {
		case <-fw.stopChan:
			return
		default:
		}
		logger.Debug("Config file changed, reloading")
		if fw.handler != nil {
			fw.handler()
		}
	})
}
