package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 16, H: 16}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{X: 11, Y: 11}, true},
		{"top-left edge", Point{X: 10, Y: 10}, true},
		{"bottom-right edge", Point{X: 26, Y: 26}, true},
		{"left of rect", Point{X: 9.5, Y: 12}, false},
		{"below rect", Point{X: 12, Y: 27}, false},
		{"far right", Point{X: 31, Y: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestRectContainsRect(t *testing.T) {
	group := Rect{X: 0, Y: 0, W: 200, H: 100}

	assert.True(t, group.ContainsRect(Rect{X: 10, Y: 10, W: 50, H: 50}))
	assert.True(t, group.ContainsRect(Rect{X: 0, Y: 0, W: 200, H: 100}), "touching edges counts as enclosed")
	assert.False(t, group.ContainsRect(Rect{X: 180, Y: 10, W: 50, H: 50}), "partial overlap")
	assert.False(t, group.ContainsRect(Rect{X: -5, Y: 10, W: 20, H: 20}))
	assert.False(t, group.ContainsRect(Rect{X: 300, Y: 300, W: 10, H: 10}))
}

func TestViewportRoundTrip(t *testing.T) {
	viewports := []Viewport{
		{OffsetX: 0, OffsetY: 0, Scale: 1},
		{OffsetX: 120, OffsetY: -40, Scale: 0.5},
		{OffsetX: -300.5, OffsetY: 75, Scale: 2.25},
		{OffsetX: 10, OffsetY: 10, Scale: 0},
	}

	for _, v := range viewports {
		p := Point{X: 137, Y: -42}
		back := v.ScreenToCanvas(v.CanvasToScreen(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestViewportScreenToCanvas(t *testing.T) {
	v := Viewport{OffsetX: 100, OffsetY: 50, Scale: 2}
	got := v.ScreenToCanvas(Point{X: 400, Y: 300})
	assert.Equal(t, Point{X: 100, Y: 100}, got)
}

func TestPointArithmetic(t *testing.T) {
	a := Point{X: 5, Y: 7}
	b := Point{X: 2, Y: 3}
	assert.Equal(t, Point{X: 3, Y: 4}, a.Sub(b))
	assert.Equal(t, Point{X: 7, Y: 10}, a.Add(b))
	assert.Equal(t, Rect{X: 3, Y: 4, W: 1, H: 1}, Rect{X: 1, Y: 1, W: 1, H: 1}.Translate(2, 3))
}
