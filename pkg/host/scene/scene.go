// Package scene is an in-memory host editor. It stores nodes and groups,
// owns the draw hooks and runs queued frame callbacks when painted. The CLI
// uses it to replay workflows and tests use it as a stand-in canvas.
package scene

import (
	"sync"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
)

// DefaultTitleHeight matches the host editor's node title bar.
const DefaultTitleHeight = 24

// Node is a placed node instance.
type Node struct {
	ID          string
	Class       string
	TypeName    string
	Rect        geom.Rect
	IsCollapsed bool
	CollapsedW  float64
}

func (n *Node) InstanceID() string { return n.ID }
func (n *Node) Bounds() geom.Rect { return n.Rect }
func (n *Node) Collapsed() bool { return n.IsCollapsed }
func (n *Node) CollapsedWidth() float64 { return n.CollapsedW }
func (n *Node) ComfyClass() string { return n.Class }
func (n *Node) Type() string { return n.TypeName }

// Group is a rectangular container.
type Group struct {
	Name     string
	Rect     geom.Rect
	Hidden   bool
	IsLocked bool
	HeaderH  float64
}

func (g *Group) Bounds() geom.Rect { return g.Rect }
func (g *Group) Title() string { return g.Name }
func (g *Group) Visible() bool { return !g.Hidden }
func (g *Group) Locked() bool { return g.IsLocked }
func (g *Group) TitleHeight() float64 { return g.HeaderH }

// Scene implements host.Graph, host.Hooks and host.FrameScheduler.
type Scene struct {
	mu      sync.Mutex
	nodes   []*Node
	groups  []*Group
	view    geom.Viewport
	titleH  float64
	pending []func()
	frames  int

	titleDraw  host.TitleDrawFunc
	groupsDraw host.GroupsDrawFunc
	onRemove   host.RemoveFunc
}

// New creates an empty scene at scale 1.
func New() *Scene {
	return &Scene{
		view:   geom.Viewport{Scale: 1},
		titleH: DefaultTitleHeight,
	}
}

// AddNode places a node on top of the paint order.
func (s *Scene) AddNode(n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
}

// AddGroup adds a group.
func (s *Scene) AddGroup(g *Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, g)
}

// RemoveNode deletes a node and runs the removal hook.
func (s *Scene) RemoveNode(id string) bool {
	s.mu.Lock()
	var removed *Node
	for i, n := range s.nodes {
		if n.ID == id {
			removed = n
			s.nodes = append(s.nodes[:i:i], s.nodes[i+1:]...)
			break
		}
	}
	hook := s.onRemove
	s.mu.Unlock()

	if removed == nil {
		return false
	}
	if hook != nil {
		hook(removed)
	}
	return true
}

// SetViewport changes pan and zoom.
func (s *Scene) SetViewport(v geom.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// SetTitleHeight changes the node title bar height.
func (s *Scene) SetTitleHeight(h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titleH = h
}

func (s *Scene) Nodes() []host.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]host.Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n
	}
	return out
}

func (s *Scene) Groups() []host.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]host.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g
	}
	return out
}

// NodeAt returns the last-painted node containing p.
func (s *Scene) NodeAt(p geom.Point) (host.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].Rect.Contains(p) {
			return s.nodes[i], true
		}
	}
	return nil, false
}

func (s *Scene) Viewport() geom.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Scene) TitleHeight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.titleH
}

func (s *Scene) TitleDraw() host.TitleDrawFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.titleDraw
}

func (s *Scene) SetTitleDraw(fn host.TitleDrawFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titleDraw = fn
}

func (s *Scene) GroupsDraw() host.GroupsDrawFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupsDraw
}

func (s *Scene) SetGroupsDraw(fn host.GroupsDrawFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupsDraw = fn
}

func (s *Scene) OnRemove() host.RemoveFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onRemove
}

func (s *Scene) SetOnRemove(fn host.RemoveFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemove = fn
}

// RequestFrame queues fn for the next Paint.
func (s *Scene) RequestFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

// PendingFrames returns the number of queued frame callbacks.
func (s *Scene) PendingFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Frames returns how many times Paint ran.
func (s *Scene) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Paint runs queued frame callbacks, then the title hook for every node and
// the groups hook once. A nil painter simulates a node without a surface.
func (s *Scene) Paint(p host.Painter) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.frames++
	s.mu.Unlock()

	for _, fn := range pending {
		fn()
	}

	nodes := s.Nodes()
	groups := s.Groups()
	if draw := s.TitleDraw(); draw != nil {
		for _, n := range nodes {
			draw(p, n)
		}
	}
	if draw := s.GroupsDraw(); draw != nil {
		draw(p, groups)
	}
}
