// Package overlay paints the favorite, note and classify glyphs on top of
// the host editor's node and group title bars, and records where they were
// drawn so the hit-test router can find them.
package overlay

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
)

// State is the read side of the classification store used while painting.
type State interface {
	IsFavorite(nodeTypeID string) bool
	HasNote(nodeTypeID string) bool
}

// Interceptor wraps the host draw hooks. Install is one-way and idempotent.
type Interceptor struct {
	state   State
	regions *Regions
	logger  logrus.FieldLogger

	mu        sync.Mutex
	installed bool
	stale     bool
}

// NewInterceptor creates an interceptor reading glyph state from state.
func NewInterceptor(state State, regions *Regions, logger logrus.FieldLogger) *Interceptor {
	if regions == nil {
		regions = NewRegions()
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Interceptor{state: state, regions: regions, logger: logger}
}

// Regions returns the cache filled during painting.
func (i *Interceptor) Regions() *Regions {
	return i.regions
}

// Installed reports whether the hooks have been wrapped.
func (i *Interceptor) Installed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installed
}

// Install wraps the title, groups and removal hooks of h. The original hook
// always runs first. Calling Install again is a no-op that returns false.
func (i *Interceptor) Install(h host.Hooks, g host.Graph) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.installed {
		return false
	}

	origTitle := h.TitleDraw()
	h.SetTitleDraw(func(p host.Painter, n host.Node) {
		if origTitle != nil {
			origTitle(p, n)
		}
		i.paintNode(p, n, g.TitleHeight())
	})

	origGroups := h.GroupsDraw()
	h.SetGroupsDraw(func(p host.Painter, groups []host.Group) {
		if origGroups != nil {
			origGroups(p, groups)
		}
		i.paintGroups(p, groups, g.TitleHeight())
	})

	origRemove := h.OnRemove()
	h.SetOnRemove(func(n host.Node) {
		if origRemove != nil {
			origRemove(n)
		}
		if n != nil {
			i.regions.ClearNode(n.InstanceID())
		}
	})

	i.installed = true
	i.logger.Debug("overlay hooks installed")
	return true
}

// Invalidate marks the painted glyph state as out of date. Geometry stays
// usable for hit-testing until the next paint rebuilds it.
func (i *Interceptor) Invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stale = true
}

// Stale reports whether store state changed since the last paint.
func (i *Interceptor) Stale() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stale
}

func (i *Interceptor) recoverPaint(what string) {
	if r := recover(); r != nil {
		i.logger.WithFields(logrus.Fields{
			"stage": what,
			"panic": fmt.Sprint(r),
		}).Error("overlay paint failed")
	}
}

func (i *Interceptor) paintNode(p host.Painter, n host.Node, titleH float64) {
	defer i.recoverPaint("node")
	if n == nil {
		return
	}
	id := n.InstanceID()
	if p == nil {
		i.logger.WithError(&store.RenderTargetMissing{InstanceID: id}).Debug("skipping overlay")
		return
	}
	if IsCollapsed(n, titleH) {
		i.regions.ClearNode(id)
		return
	}
	buttons, ok := NodeButtons(n.Bounds().W, titleH)
	if !ok {
		i.regions.ClearNode(id)
		return
	}

	typeID := host.NodeTypeID(n)
	for _, b := range buttons {
		active := false
		switch b.Kind {
		case host.GlyphNote:
			active = i.state.HasNote(typeID)
		case host.GlyphFavorite:
			active = i.state.IsFavorite(typeID)
		}
		p.DrawGlyph(b.Kind, b.Rect, active)
	}
	i.regions.SetNode(NodeRegion{InstanceID: id, NodeTypeID: typeID, Buttons: buttons})

	i.mu.Lock()
	i.stale = false
	i.mu.Unlock()
}

func (i *Interceptor) paintGroups(p host.Painter, groups []host.Group, titleH float64) {
	defer i.recoverPaint("groups")
	if p == nil {
		i.logger.WithError(&store.RenderTargetMissing{InstanceID: "groups"}).Debug("skipping group overlay")
		return
	}
	regions := make([]GroupRegion, 0, len(groups))
	for _, g := range groups {
		if g == nil || !g.Visible() || g.Locked() {
			continue
		}
		rect := GroupButton(g, titleH)
		p.DrawGlyph(host.GlyphClassify, rect, false)
		regions = append(regions, GroupRegion{Group: g, Rect: rect})
	}
	i.regions.SetGroups(regions)
}
