// Package store holds the in-memory classification state: folders, folder
// membership, favorites, notes, custom display names and hidden sources.
//
// Every mutation applies to memory first and then publishes a typed event.
// Persistence is a bus subscriber, so a failed save never rolls back the
// in-memory change.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// DefaultMaxDepth is the deepest folder level allowed unless overridden.
const DefaultMaxDepth = 3

// Option configures a Store.
type Option func(*Store)

// WithBus sets the bus mutations are published on.
func WithBus(bus *events.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithLogger sets the store logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMaxDepth limits folder nesting. Zero disables the limit.
func WithMaxDepth(depth int) Option {
	return func(s *Store) { s.maxDepth = depth }
}

// WithIDGenerator replaces the folder id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithConfig seeds the store with existing state.
func WithConfig(cfg *models.Config) Option {
	return func(s *Store) {
		if cfg != nil {
			s.cfg = cfg.Clone()
			s.cfg.Normalize()
		}
	}
}

// Store is safe for concurrent use. Events are published after the lock is
// released, so handlers may read from the store.
type Store struct {
	mu       sync.RWMutex
	cfg      *models.Config
	bus      *events.Bus
	logger   logrus.FieldLogger
	maxDepth int
	newID    func() string
}

// New creates a Store.
func New(opts ...Option) *Store {
	s := &Store{
		cfg:      models.NewConfig(),
		maxDepth: DefaultMaxDepth,
		newID:    func() string { return "folder_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		s.logger = l
	}
	if s.bus == nil {
		s.bus = events.NewBus(s.logger)
	}
	return s
}

// Bus returns the bus the store publishes on.
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// MaxDepth returns the folder depth limit.
func (s *Store) MaxDepth() int {
	return s.maxDepth
}

// update runs fn under the write lock and publishes the returned events once
// the lock is released.
func (s *Store) update(fn func(c *models.Config) ([]events.Event, error)) error {
	evs, err := func() ([]events.Event, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.cfg)
	}()
	if err != nil {
		return err
	}
	if s.bus == nil {
		return nil
	}
	for _, e := range evs {
		s.bus.Publish(e)
	}
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *models.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Replace swaps in a whole config, for example after an external edit.
func (s *Store) Replace(cfg *models.Config, source string) {
	next := models.NewConfig()
	if cfg != nil {
		next = cfg.Clone()
		next.Normalize()
	}
	_ = s.update(func(c *models.Config) ([]events.Event, error) {
		s.cfg = next
		return []events.Event{events.ConfigReloaded{Source: source}}, nil
	})
	s.logger.WithFields(logrus.Fields{
		"source":  source,
		"folders": len(next.Folders),
	}).Debug("config replaced")
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func removeAt(list []string, i int) []string {
	return append(list[:i:i], list[i+1:]...)
}

func requireNodeTypeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &ValidationError{Field: "node type", Reason: "node type id is required"}
	}
	return id, nil
}

// cleanIDs trims ids, drops blanks and removes duplicates keeping first
// occurrence order.
func cleanIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortedCopy(list []string) []string {
	out := append([]string{}, list...)
	sort.Strings(out)
	return out
}
