package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
)

func TestNodeAtReturnsTopmost(t *testing.T) {
	s := New()
	s.AddNode(&Node{ID: "below", Rect: geom.Rect{X: 0, Y: 0, W: 100, H: 100}})
	s.AddNode(&Node{ID: "above", Rect: geom.Rect{X: 50, Y: 50, W: 100, H: 100}})

	n, ok := s.NodeAt(geom.Point{X: 75, Y: 75})
	require.True(t, ok)
	assert.Equal(t, "above", n.InstanceID())

	n, ok = s.NodeAt(geom.Point{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, "below", n.InstanceID())

	_, ok = s.NodeAt(geom.Point{X: 500, Y: 500})
	assert.False(t, ok)
}

func TestPaintRunsFramesThenHooks(t *testing.T) {
	s := New()
	s.AddNode(&Node{ID: "1"})
	var order []string

	s.SetTitleDraw(func(p host.Painter, n host.Node) { order = append(order, "title:"+n.InstanceID()) })
	s.SetGroupsDraw(func(p host.Painter, g []host.Group) { order = append(order, "groups") })
	s.RequestFrame(func() { order = append(order, "frame") })

	assert.Equal(t, 1, s.PendingFrames())
	s.Paint(&Recorder{})
	assert.Equal(t, []string{"frame", "title:1", "groups"}, order)
	assert.Equal(t, 0, s.PendingFrames())
	assert.Equal(t, 1, s.Frames())
}

func TestRemoveNodeRunsHook(t *testing.T) {
	s := New()
	s.AddNode(&Node{ID: "1"})
	var removed string
	s.SetOnRemove(func(n host.Node) { removed = n.InstanceID() })

	assert.True(t, s.RemoveNode("1"))
	assert.Equal(t, "1", removed)
	assert.False(t, s.RemoveNode("1"))
	assert.Empty(t, s.Nodes())
}

func TestNodeTypeIDFromScene(t *testing.T) {
	assert.Equal(t, "KSampler", host.NodeTypeID(&Node{ID: "7", Class: "KSampler", TypeName: "Other"}))
	assert.Equal(t, "Other", host.NodeTypeID(&Node{ID: "7", TypeName: "Other"}))
	assert.Equal(t, "7", host.NodeTypeID(&Node{ID: "7"}))
}

func TestLoadWorkflow(t *testing.T) {
	raw := `{
		"nodes": [
			{"id": 3, "type": "KSampler", "pos": [100, 200], "size": [300, 250]},
			{"id": 4, "type": "VAEDecode", "pos": [500, 200], "size": [200, 50], "flags": {"collapsed": true}}
		],
		"groups": [
			{"title": "Sampling", "bounding": [80, 150, 700, 400]},
			{"title": "Pinned", "bounding": [0, 0, 10, 10], "flags": {"pinned": true}}
		],
		"extra": {"ds": {"scale": 1.5, "offset": [10, -20]}}
	}`

	s, err := LoadWorkflow(strings.NewReader(raw))
	require.NoError(t, err)

	nodes := s.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "3", nodes[0].InstanceID())
	assert.Equal(t, geom.Rect{X: 100, Y: 176, W: 300, H: 274}, nodes[0].Bounds())
	assert.Equal(t, "KSampler", host.NodeTypeID(nodes[0]))
	assert.True(t, nodes[1].Collapsed())

	groups := s.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Sampling", groups[0].Title())
	assert.False(t, groups[0].Locked())
	assert.True(t, groups[1].Locked())

	assert.Equal(t, geom.Viewport{OffsetX: 10, OffsetY: -20, Scale: 1.5}, s.Viewport())
}

func TestLoadWorkflowRejectsGarbage(t *testing.T) {
	_, err := LoadWorkflow(strings.NewReader("not json"))
	assert.Error(t, err)
}
