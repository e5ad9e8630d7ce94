package sync

import (
	stdsync "sync"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
)

// Invalidator is told that painted overlay state is out of date.
type Invalidator interface {
	Invalidate()
}

// RedrawScheduler turns store changes into host frames. Any number of
// requests before the host runs the frame produce a single frame.
type RedrawScheduler struct {
	frames      host.FrameScheduler
	invalidator Invalidator

	mu        stdsync.Mutex
	pending   bool
	requested int
}

// NewRedrawScheduler creates a scheduler. invalidator may be nil.
func NewRedrawScheduler(frames host.FrameScheduler, invalidator Invalidator) *RedrawScheduler {
	return &RedrawScheduler{frames: frames, invalidator: invalidator}
}

// Request invalidates the overlay and asks for a frame unless one is already
// pending.
func (r *RedrawScheduler) Request() {
	if r.invalidator != nil {
		r.invalidator.Invalidate()
	}

	r.mu.Lock()
	if r.pending || r.frames == nil {
		r.mu.Unlock()
		return
	}
	r.pending = true
	r.requested++
	r.mu.Unlock()

	redrawTotal.Inc()
	r.frames.RequestFrame(func() {
		r.mu.Lock()
		r.pending = false
		r.mu.Unlock()
	})
}

// Requested returns how many frames were asked for.
func (r *RedrawScheduler) Requested() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requested
}

// Attach requests a redraw for every event that changes what the overlay
// shows.
func (r *RedrawScheduler) Attach(bus *events.Bus) events.Subscription {
	return bus.Subscribe(func(events.Event) { r.Request() },
		events.KindFavorites,
		events.KindNotes,
		events.KindMembership,
		events.KindFolders,
		events.KindCustomNames,
		events.KindHidden,
		events.KindConfigReloaded,
	)
}
