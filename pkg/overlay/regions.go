package overlay

import (
	"sync"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
)

// Button is one clickable glyph rectangle.
type Button struct {
	Kind host.Glyph
	Rect geom.Rect
}

// NodeRegion holds the glyph rectangles of one node instance in node-local
// coordinates.
type NodeRegion struct {
	InstanceID string
	NodeTypeID string
	Buttons    []Button
}

// HitTest returns the glyph under a node-local point.
func (r NodeRegion) HitTest(local geom.Point) (host.Glyph, bool) {
	for _, b := range r.Buttons {
		if b.Rect.Contains(local) {
			return b.Kind, true
		}
	}
	return "", false
}

// GroupRegion is the glyph rectangle of one group in canvas coordinates.
type GroupRegion struct {
	Group host.Group
	Rect  geom.Rect
}

// Regions caches the rectangles recorded during the last paint.
type Regions struct {
	mu     sync.RWMutex
	nodes  map[string]NodeRegion
	groups []GroupRegion
}

// NewRegions creates an empty cache.
func NewRegions() *Regions {
	return &Regions{nodes: make(map[string]NodeRegion)}
}

// SetNode records the region for a node instance.
func (r *Regions) SetNode(region NodeRegion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[region.InstanceID] = region
}

// ClearNode drops a node instance's region.
func (r *Regions) ClearNode(instanceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, instanceID)
}

// Node returns the region recorded for a node instance.
func (r *Regions) Node(instanceID string) (NodeRegion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	region, ok := r.nodes[instanceID]
	return region, ok
}

// NodeCount returns the number of cached node regions.
func (r *Regions) NodeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// SetGroups replaces every group region.
func (r *Regions) SetGroups(groups []GroupRegion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = groups
}

// Groups returns a copy of the group regions.
func (r *Regions) Groups() []GroupRegion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]GroupRegion{}, r.groups...)
}

// GroupAt returns the group whose glyph contains the canvas point.
func (r *Regions) GroupAt(p geom.Point) (GroupRegion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.groups {
		if g.Rect.Contains(p) {
			return g, true
		}
	}
	return GroupRegion{}, false
}

// Reset drops everything.
func (r *Regions) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = make(map[string]NodeRegion)
	r.groups = nil
}
