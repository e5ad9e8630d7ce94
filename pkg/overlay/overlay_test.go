package overlay

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/host/scene"
)

type fakeState struct {
	favorites map[string]bool
	notes     map[string]bool
}

func (f fakeState) IsFavorite(id string) bool { return f.favorites[id] }
func (f fakeState) HasNote(id string) bool    { return f.notes[id] }

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newInstalled(t *testing.T, state State) (*scene.Scene, *Interceptor) {
	t.Helper()
	s := scene.New()
	i := NewInterceptor(state, nil, quiet())
	require.True(t, i.Install(s, s))
	return s, i
}

func TestNodeButtonsLayout(t *testing.T) {
	buttons, ok := NodeButtons(200, 24)
	require.True(t, ok)
	require.Len(t, buttons, 3)

	total := 3*ButtonSize + 2*ButtonGap
	startX := (200 - total) / 2
	assert.Equal(t, host.GlyphClassify, buttons[0].Kind)
	assert.Equal(t, host.GlyphNote, buttons[1].Kind)
	assert.Equal(t, host.GlyphFavorite, buttons[2].Kind)
	assert.Equal(t, geom.Rect{X: startX, Y: 4, W: 16, H: 16}, buttons[0].Rect)
	assert.Equal(t, startX+ButtonSize+ButtonGap, buttons[1].Rect.X)
	assert.Equal(t, startX+2*(ButtonSize+ButtonGap), buttons[2].Rect.X)
}

func TestNodeButtonsDoNotFit(t *testing.T) {
	_, ok := NodeButtons(40, 24)
	assert.False(t, ok, "narrow node")
	_, ok = NodeButtons(200, 10)
	assert.False(t, ok, "short title bar")
}

func TestIsCollapsed(t *testing.T) {
	tests := []struct {
		name string
		node *scene.Node
		want bool
	}{
		{"explicit flag", &scene.Node{Rect: geom.Rect{W: 200, H: 200}, IsCollapsed: true}, true},
		{"height near title", &scene.Node{Rect: geom.Rect{W: 200, H: 25}}, true},
		{"width near collapsed width", &scene.Node{Rect: geom.Rect{W: 81, H: 200}, CollapsedW: 80}, true},
		{"expanded", &scene.Node{Rect: geom.Rect{W: 200, H: 200}, CollapsedW: 80}, false},
		{"no collapsed width", &scene.Node{Rect: geom.Rect{W: 1, H: 200}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCollapsed(tt.node, 24))
		})
	}
}

func TestGroupButton(t *testing.T) {
	g := &scene.Group{Rect: geom.Rect{X: 100, Y: 100, W: 300, H: 200}}
	r := GroupButton(g, 24)
	assert.Equal(t, geom.Rect{X: 100 + 300 - 16 - 6, Y: 100 - 24 + 4, W: 16, H: 16}, r)

	narrow := &scene.Group{Rect: geom.Rect{X: 0, Y: 50, W: 10, H: 10}, HeaderH: 40}
	r = GroupButton(narrow, 24)
	assert.Equal(t, 4.0, r.X)
	assert.Equal(t, 50-40+12.0, r.Y)
}

func TestInstallIsIdempotent(t *testing.T) {
	s := scene.New()
	s.AddNode(&scene.Node{ID: "1", Class: "KSampler", Rect: geom.Rect{W: 200, H: 120}})
	origCalls := 0
	s.SetTitleDraw(func(p host.Painter, n host.Node) { origCalls++ })

	i := NewInterceptor(fakeState{}, nil, quiet())
	assert.True(t, i.Install(s, s))
	assert.False(t, i.Install(s, s))
	assert.True(t, i.Installed())

	rec := &scene.Recorder{}
	s.Paint(rec)
	assert.Equal(t, 1, origCalls, "original hook runs once per paint")
	assert.Equal(t, 3, len(rec.Calls), "glyphs are painted once, not per install")
}

func TestPaintRecordsRegionsAndState(t *testing.T) {
	state := fakeState{
		favorites: map[string]bool{"KSampler": true},
		notes:     map[string]bool{"KSampler": true},
	}
	s, i := newInstalled(t, state)
	s.AddNode(&scene.Node{ID: "1", Class: "KSampler", Rect: geom.Rect{X: 10, Y: 10, W: 200, H: 120}})
	s.AddNode(&scene.Node{ID: "2", Class: "VAEDecode", Rect: geom.Rect{X: 300, Y: 10, W: 200, H: 120}})

	rec := &scene.Recorder{}
	s.Paint(rec)
	require.Len(t, rec.Calls, 6)

	assert.Equal(t, host.GlyphClassify, rec.Calls[0].Glyph)
	assert.False(t, rec.Calls[0].Active)
	assert.True(t, rec.Calls[1].Active, "note glyph is active when a note exists")
	assert.True(t, rec.Calls[2].Active, "favorite glyph is filled")
	assert.False(t, rec.Calls[4].Active)
	assert.False(t, rec.Calls[5].Active)

	region, ok := i.Regions().Node("1")
	require.True(t, ok)
	assert.Equal(t, "KSampler", region.NodeTypeID)
	assert.Len(t, region.Buttons, 3)
	assert.Equal(t, 2, i.Regions().NodeCount())
}

func TestCollapsedNodeClearsRegion(t *testing.T) {
	s, i := newInstalled(t, fakeState{})
	n := &scene.Node{ID: "1", Class: "KSampler", Rect: geom.Rect{W: 200, H: 120}}
	s.AddNode(n)

	s.Paint(&scene.Recorder{})
	_, ok := i.Regions().Node("1")
	require.True(t, ok)

	n.IsCollapsed = true
	rec := &scene.Recorder{}
	s.Paint(rec)
	assert.Empty(t, rec.Calls)
	_, ok = i.Regions().Node("1")
	assert.False(t, ok)
}

func TestMissingPainterIsSkipped(t *testing.T) {
	s, i := newInstalled(t, fakeState{})
	s.AddNode(&scene.Node{ID: "1", Class: "KSampler", Rect: geom.Rect{W: 200, H: 120}})
	s.AddGroup(&scene.Group{Name: "g", Rect: geom.Rect{W: 300, H: 300}})

	assert.NotPanics(t, func() { s.Paint(nil) })
	assert.Equal(t, 0, i.Regions().NodeCount())
	assert.Empty(t, i.Regions().Groups())
}

func TestGroupsPaintSkipsHiddenAndLocked(t *testing.T) {
	s, i := newInstalled(t, fakeState{})
	s.AddGroup(&scene.Group{Name: "visible", Rect: geom.Rect{X: 0, Y: 100, W: 300, H: 300}})
	s.AddGroup(&scene.Group{Name: "hidden", Rect: geom.Rect{X: 0, Y: 100, W: 300, H: 300}, Hidden: true})
	s.AddGroup(&scene.Group{Name: "locked", Rect: geom.Rect{X: 0, Y: 100, W: 300, H: 300}, IsLocked: true})

	rec := &scene.Recorder{}
	s.Paint(rec)
	assert.Equal(t, 1, rec.Count(host.GlyphClassify))
	groups := i.Regions().Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "visible", groups[0].Group.Title())

	hit, ok := i.Regions().GroupAt(geom.Point{X: groups[0].Rect.X + 1, Y: groups[0].Rect.Y + 1})
	require.True(t, ok)
	assert.Equal(t, "visible", hit.Group.Title())
}

func TestRemoveHookClearsRegion(t *testing.T) {
	s, i := newInstalled(t, fakeState{})
	s.AddNode(&scene.Node{ID: "1", Class: "KSampler", Rect: geom.Rect{W: 200, H: 120}})
	s.Paint(&scene.Recorder{})
	require.Equal(t, 1, i.Regions().NodeCount())

	s.RemoveNode("1")
	assert.Equal(t, 0, i.Regions().NodeCount())
}

type panickyState struct{}

func (panickyState) IsFavorite(string) bool { panic("store exploded") }
func (panickyState) HasNote(string) bool    { return false }

func TestPaintPanicDoesNotEscape(t *testing.T) {
	s, _ := newInstalled(t, panickyState{})
	s.AddNode(&scene.Node{ID: "1", Class: "KSampler", Rect: geom.Rect{W: 200, H: 120}})
	assert.NotPanics(t, func() { s.Paint(&scene.Recorder{}) })
}

func TestInvalidate(t *testing.T) {
	s, i := newInstalled(t, fakeState{})
	s.AddNode(&scene.Node{ID: "1", Class: "KSampler", Rect: geom.Rect{W: 200, H: 120}})

	i.Invalidate()
	assert.True(t, i.Stale())
	s.Paint(&scene.Recorder{})
	assert.False(t, i.Stale())
}

func TestNodeRegionHitTest(t *testing.T) {
	buttons, _ := NodeButtons(200, 24)
	region := NodeRegion{InstanceID: "1", NodeTypeID: "X", Buttons: buttons}

	g, ok := region.HitTest(geom.Point{X: buttons[2].Rect.X + 1, Y: buttons[2].Rect.Y + 1})
	require.True(t, ok)
	assert.Equal(t, host.GlyphFavorite, g)

	_, ok = region.HitTest(geom.Point{X: 1, Y: 1})
	assert.False(t, ok)
}
