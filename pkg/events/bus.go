// Package events is the typed publish/subscribe bus that decouples the
// classification store from the views and workers observing it.
package events

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler receives events in the publisher's goroutine.
type Handler func(Event)

type subscriber struct {
	id    uint64
	kinds map[Kind]struct{}
	fn    Handler
}

func (s subscriber) wants(k Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

// Bus delivers events synchronously to subscribers in registration order.
// A panicking handler is logged and does not stop delivery to the others.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber
	logger logrus.FieldLogger
}

// NewBus creates an empty bus.
func NewBus(logger logrus.FieldLogger) *Bus {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Bus{logger: logger}
}

// Subscription is returned by Subscribe and removes the handler when
// Unsubscribe is called. Calling Unsubscribe more than once is safe.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Unsubscribe detaches the handler.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	s.bus.remove(s.id)
}

// Subscribe registers fn for the given kinds, or for every kind when none are
// given.
func (b *Bus) Subscribe(fn Handler, kinds ...Kind) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscriber{id: b.nextID, fn: fn}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = struct{}{}
		}
	}
	b.subs = append(b.subs, sub)
	return Subscription{bus: b, id: sub.id}
}

// On registers a handler for a single event type.
func On[T Event](b *Bus, fn func(T)) Subscription {
	var zero T
	return b.Subscribe(func(e Event) {
		if typed, ok := e.(T); ok {
			fn(typed)
		}
	}, zero.Kind())
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every matching subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.wants(e.Kind()) {
			continue
		}
		b.deliver(s, e)
	}
}

func (b *Bus) deliver(s subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(logrus.Fields{
				"event":      string(e.Kind()),
				"subscriber": s.id,
				"panic":      fmt.Sprint(r),
			}).Error("event handler panicked")
		}
	}()
	s.fn(e)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
