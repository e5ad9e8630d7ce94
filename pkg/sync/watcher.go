package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	stdsync "sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
)

// Watcher reloads the store when the file backend's config file is edited
// by another process. The bridge's own saves are ignored even when the store
// has moved on since, so unsaved edits survive until the next save. Foreign
// files that match the in-memory state are ignored too.
type Watcher struct {
	bridge   *persistence.FileBridge
	store    *store.Store
	logger   logrus.FieldLogger
	debounce time.Duration
	timeout  time.Duration

	watcher  *fsnotify.Watcher
	changes  chan struct{}
	done     chan struct{}
	wg       stdsync.WaitGroup
	stopOnce stdsync.Once
	reloads  chan struct{}
}

// NewWatcher creates a watcher for the bridge's file.
func NewWatcher(bridge *persistence.FileBridge, s *store.Store, cfg Config, logger logrus.FieldLogger) (*Watcher, error) {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		bridge:   bridge,
		store:    s,
		logger:   logger.WithField("component", "watcher"),
		debounce: debounce,
		timeout:  cfg.SaveTimeout,
		watcher:  fw,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		reloads:  make(chan struct{}, 16),
	}, nil
}

// Start watches the directory holding the config file. The directory is
// watched rather than the file so atomic renames are seen.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.bridge.Path())
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Reloaded receives a value after every reload applied to the store.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloads
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	target := filepath.Clean(w.bridge.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("file watcher error")
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.changes:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.Reload(ctx); err != nil {
				w.logger.WithError(err).Warn("config reload failed")
			}
		}
	}
}

// Reload reads the file and replaces the store state if another process
// wrote it and it differs from memory.
func (w *Watcher) Reload(ctx context.Context) error {
	timeout := w.timeout
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg, foreign, err := w.bridge.GetForeignConfig(ctx)
	if err != nil {
		return &store.PersistenceError{Op: "reload", Err: err}
	}
	if !foreign {
		return nil
	}
	current := w.store.Snapshot()
	if reflect.DeepEqual(cfg.Folders, current.Folders) &&
		reflect.DeepEqual(cfg.FolderNodes, current.FolderNodes) &&
		reflect.DeepEqual(cfg.Favorites, current.Favorites) &&
		reflect.DeepEqual(cfg.Notes, current.Notes) &&
		reflect.DeepEqual(cfg.NodeCustomNames, current.NodeCustomNames) &&
		reflect.DeepEqual(cfg.HiddenPlugins, current.HiddenPlugins) &&
		cfg.ShowHiddenPlugins == current.ShowHiddenPlugins {
		return nil
	}

	w.store.Replace(cfg, "file-watch")
	reloadTotal.Inc()
	w.logger.WithField("path", w.bridge.Path()).Info("config reloaded after external edit")
	select {
	case w.reloads <- struct{}{}:
	default:
	}
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
