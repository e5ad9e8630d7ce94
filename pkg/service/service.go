// Package service wires the classification store to its persistence backend,
// the node-type registry and any canvas it is attached to.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/models"
	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
	"github.com/mattsolo1/grove-nodemanager/pkg/registry"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
	nmsync "github.com/mattsolo1/grove-nodemanager/pkg/sync"
)

// Service is the node manager core
type Service struct {
	Config   *Config
	Logger   logrus.FieldLogger
	Bus      *events.Bus
	Store    *store.Store
	Bridge   persistence.Bridge
	Syncer   *nmsync.Syncer
	Registry *registry.Registry
	Watcher  *nmsync.Watcher

	canvasMu sync.Mutex
	canvases map[host.Hooks]*Canvas
}

// Config holds service configuration
type Config struct {
	DataDir        string
	Backend        string
	Persistence    map[string]interface{}
	RegistryFile   string
	MaxFolderDepth int
	Sync           nmsync.Config
}

type options struct {
	logger   logrus.FieldLogger
	notifier host.Notifier
	bridge   persistence.Bridge
	registry *registry.Registry
}

// Option customizes New.
type Option func(*options)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNotifier routes save failures to a user-facing notifier.
func WithNotifier(n host.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithBridge uses an already opened backend instead of Config.Backend.
func WithBridge(b persistence.Bridge) Option {
	return func(o *options) {
		o.bridge = b
	}
}

// WithRegistry uses a registry instead of loading Config.RegistryFile.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// New creates the service, loads the persisted config and starts saving
// changes in the background.
func New(ctx context.Context, config *Config, opts ...Option) (*Service, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		o.logger = l
	}

	bridge := o.bridge
	if bridge == nil {
		var err error
		bridge, err = persistence.Open(config.Backend, config.DataDir, config.Persistence, o.logger)
		if err != nil {
			return nil, fmt.Errorf("open persistence: %w", err)
		}
	}

	reg := o.registry
	if reg == nil {
		var err error
		reg, err = loadRegistry(config.RegistryFile)
		if err != nil {
			_ = bridge.Close()
			return nil, err
		}
	}

	bus := events.NewBus(o.logger)
	st := store.New(
		store.WithBus(bus),
		store.WithLogger(o.logger),
		store.WithMaxDepth(config.MaxFolderDepth),
	)
	syncer := nmsync.NewSyncer(bridge, st, o.notifier, config.Sync, o.logger)
	if err := syncer.Load(ctx); err != nil {
		_ = bridge.Close()
		return nil, fmt.Errorf("load config: %w", err)
	}
	syncer.Start()

	svc := &Service{
		Config:   config,
		Logger:   o.logger,
		Bus:      bus,
		Store:    st,
		Bridge:   bridge,
		Syncer:   syncer,
		Registry: reg,
	}

	if fb, ok := bridge.(*persistence.FileBridge); ok && config.Sync.Watch {
		w, err := nmsync.NewWatcher(fb, st, config.Sync, o.logger)
		if err != nil {
			_ = svc.Close(ctx)
			return nil, err
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Close()
			_ = svc.Close(ctx)
			return nil, err
		}
		svc.Watcher = w
	}
	return svc, nil
}

func loadRegistry(path string) (*registry.Registry, error) {
	if path == "" {
		return registry.New(nil), nil
	}
	reg, err := registry.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return registry.New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load registry %s: %w", filepath.Base(path), err)
	}
	return reg, nil
}

// Snapshot returns a copy of the current classification state.
func (s *Service) Snapshot() *models.Config {
	return s.Store.Snapshot()
}

// Save writes pending changes now.
func (s *Service) Save(ctx context.Context) error {
	return s.Syncer.Flush(ctx)
}

// Close saves pending changes and releases the backend.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close watcher: %w", err))
		}
	}
	if err := s.Syncer.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.Bridge.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close persistence: %w", err))
	}
	return errors.Join(errs...)
}
