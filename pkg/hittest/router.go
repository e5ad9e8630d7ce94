// Package hittest routes pointer input on the host canvas to the overlay
// glyphs before the host's own handlers see it.
package hittest

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/overlay"
)

// Actions are dispatched when a glyph is hit.
type Actions interface {
	ToggleFavorite(nodeTypeID string) error
	EditNote(nodeTypeID string) error
	Classify(nodeTypeID string) error
	ClassifyGroup(g host.Group) error
}

// TargetKind says what a resolved point hit.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetGroup
	TargetNodeGlyph
)

// Target is the result of resolving a canvas point.
type Target struct {
	Kind       TargetKind
	Glyph      host.Glyph
	InstanceID string
	NodeTypeID string
	Group      host.Group
}

// Router resolves pointer events against the cached overlay regions.
type Router struct {
	graph   host.Graph
	regions *overlay.Regions
	actions Actions
	logger  logrus.FieldLogger

	mu sync.Mutex
	// swallowClick is set when a pointer-down was consumed so the click that
	// ends the same press does not dispatch again.
	swallowClick bool
}

// NewRouter creates a router.
func NewRouter(graph host.Graph, regions *overlay.Regions, actions Actions, logger logrus.FieldLogger) *Router {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Router{graph: graph, regions: regions, actions: actions, logger: logger}
}

// Resolve finds the glyph under a canvas point. Group glyphs win over node
// glyphs.
func (r *Router) Resolve(p geom.Point) Target {
	if g, ok := r.regions.GroupAt(p); ok {
		return Target{Kind: TargetGroup, Glyph: host.GlyphClassify, Group: g.Group}
	}
	n, ok := r.graph.NodeAt(p)
	if !ok || n == nil {
		return Target{}
	}
	region, ok := r.regions.Node(n.InstanceID())
	if !ok {
		return Target{}
	}
	local := p.Sub(n.Bounds().Origin())
	glyph, ok := region.HitTest(local)
	if !ok {
		return Target{}
	}
	return Target{
		Kind:       TargetNodeGlyph,
		Glyph:      glyph,
		InstanceID: region.InstanceID,
		NodeTypeID: region.NodeTypeID,
	}
}

func (r *Router) resolveEvent(e *PointerEvent) (Target, bool) {
	if e == nil || e.Button != PrimaryButton {
		return Target{}, false
	}
	canvas := r.graph.Viewport().ScreenToCanvas(e.Screen)
	t := r.Resolve(canvas)
	return t, t.Kind != TargetNone
}

// HandlePointerDown consumes and dispatches a hit. It returns true when the
// event was consumed.
func (r *Router) HandlePointerDown(e *PointerEvent) bool {
	t, hit := r.resolveEvent(e)

	r.mu.Lock()
	r.swallowClick = hit
	r.mu.Unlock()

	if !hit {
		return false
	}
	e.consume()
	r.dispatch(t)
	return true
}

// HandleClick is the fallback path for hosts that intercept pointer-down
// upstream. A click ending a press already handled on pointer-down is
// consumed without dispatching twice.
func (r *Router) HandleClick(e *PointerEvent) bool {
	t, hit := r.resolveEvent(e)

	r.mu.Lock()
	swallow := r.swallowClick
	r.swallowClick = false
	r.mu.Unlock()

	if !hit {
		return false
	}
	e.consume()
	if swallow {
		return true
	}
	r.dispatch(t)
	return true
}

func (r *Router) dispatch(t Target) {
	log := r.logger.WithFields(logrus.Fields{
		"glyph":     string(t.Glyph),
		"node_type": t.NodeTypeID,
	})
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", fmt.Sprint(rec)).Error("overlay action panicked")
		}
	}()

	var err error
	switch t.Kind {
	case TargetGroup:
		err = r.actions.ClassifyGroup(t.Group)
	case TargetNodeGlyph:
		switch t.Glyph {
		case host.GlyphFavorite:
			err = r.actions.ToggleFavorite(t.NodeTypeID)
		case host.GlyphNote:
			err = r.actions.EditNote(t.NodeTypeID)
		case host.GlyphClassify:
			err = r.actions.Classify(t.NodeTypeID)
		}
	}
	if err != nil {
		log.WithError(err).Warn("overlay action failed")
	}
}
