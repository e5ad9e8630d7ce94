// Package sync connects the store to everything that reacts to its changes:
// the persistence backend, host redraws and external edits of the config
// file.
package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
)

// Syncer saves the latest store snapshot after mutations. Saves run on one
// background goroutine; pending requests collapse into a single save of
// whatever the store holds at that moment. A failed save keeps the in-memory
// state and reports the failure; the next save carries the change.
type Syncer struct {
	bridge   persistence.Bridge
	store    *store.Store
	notifier host.Notifier
	logger   logrus.FieldLogger
	cfg      Config
	backend  string

	sub   events.Subscription
	kick  chan struct{}
	stop  chan struct{}
	done  chan struct{}
	dirty atomic.Bool

	saveMu    stdsync.Mutex
	startOnce stdsync.Once
	stopOnce  stdsync.Once
	started   atomic.Bool
	lastErr   atomic.Value
}

// NewSyncer creates a Syncer. Call Start to begin saving.
func NewSyncer(bridge persistence.Bridge, s *store.Store, notifier host.Notifier, cfg Config, logger logrus.FieldLogger) *Syncer {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	return &Syncer{
		bridge:   bridge,
		store:    s,
		notifier: notifier,
		logger:   logger.WithField("component", "syncer"),
		cfg:      cfg,
		backend:  backendName(bridge),
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Load reads the persisted config into the store.
func (s *Syncer) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
	defer cancel()

	cfg, err := s.bridge.GetConfig(ctx)
	if err != nil {
		return &store.PersistenceError{Op: "load", Err: err}
	}
	s.store.Replace(cfg, s.backend)
	s.dirty.Store(false)
	return nil
}

// Start subscribes to store mutations and runs the save worker.
func (s *Syncer) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		s.sub = s.store.Bus().Subscribe(func(e events.Event) {
			if events.Mutation(e) {
				s.markDirty()
			}
		})
		go s.run()
	})
}

func (s *Syncer) markDirty() {
	s.dirty.Store(true)
	if !s.cfg.AutoSave {
		return
	}
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Dirty reports whether there are changes not yet saved.
func (s *Syncer) Dirty() bool {
	return s.dirty.Load()
}

// LastError returns the error of the most recent failed save, or nil after a
// successful one.
func (s *Syncer) LastError() error {
	if v, ok := s.lastErr.Load().(errBox); ok {
		return v.err
	}
	return nil
}

type errBox struct{ err error }

func (s *Syncer) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.kick:
		}

		if s.cfg.Debounce > 0 {
			timer := time.NewTimer(s.cfg.Debounce)
			select {
			case <-timer.C:
			case <-s.stop:
				timer.Stop()
				return
			}
		}
		select {
		case <-s.kick:
		default:
		}
		_ = s.save(context.Background())
	}
}

// Save writes the current snapshot immediately, dirty or not.
func (s *Syncer) Save(ctx context.Context) error {
	return s.save(ctx)
}

// Flush saves immediately if there are unsaved changes.
func (s *Syncer) Flush(ctx context.Context) error {
	if !s.dirty.Load() {
		return nil
	}
	return s.save(ctx)
}

func (s *Syncer) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.dirty.Store(false)
	snapshot := s.store.Snapshot()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
	defer cancel()

	start := time.Now()
	err := s.bridge.SaveConfig(ctx, snapshot)
	saveDuration.WithLabelValues(s.backend).Observe(time.Since(start).Seconds())

	if err != nil {
		s.dirty.Store(true)
		saveTotal.WithLabelValues(s.backend, "error").Inc()
		perr := &store.PersistenceError{Op: "save", Err: err}
		s.lastErr.Store(errBox{err: perr})
		s.logger.WithError(err).WithField("backend", s.backend).Warn("config save failed")
		s.store.Bus().Publish(events.PersistenceFailed{Err: perr, At: time.Now()})
		if s.notifier != nil {
			s.notifier.Notify(host.LevelError, store.UserMessage("your last change", perr))
		}
		return perr
	}

	saveTotal.WithLabelValues(s.backend, "ok").Inc()
	s.lastErr.Store(errBox{})
	s.logger.WithField("folders", len(snapshot.Folders)).Debug("config saved")
	return nil
}

// Close stops the worker and saves anything still pending.
func (s *Syncer) Close(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.sub.Unsubscribe()
		close(s.stop)
		if s.started.Load() {
			<-s.done
		}
		if ferr := s.Flush(ctx); ferr != nil {
			err = fmt.Errorf("final save: %w", ferr)
		}
	})
	return err
}
