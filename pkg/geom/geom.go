// Package geom holds the coordinate and containment helpers shared by the
// overlay painter, the hit-test router and group batch operations.
package geom

// Point is a position in either screen or canvas space.
type Point struct {
	X, Y float64
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies inside r. Edges count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely within r. Overlap alone is not
// enough; touching edges are allowed.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Right() <= r.Right() && o.Y >= r.Y && o.Bottom() <= r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Viewport is the canvas pan/zoom state. Canvas coordinates relate to screen
// coordinates by canvas = screen/Scale - Offset.
type Viewport struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ScreenToCanvas converts a point on the input surface to canvas space.
func (v Viewport) ScreenToCanvas(p Point) Point {
	s := v.scale()
	return Point{X: p.X/s - v.OffsetX, Y: p.Y/s - v.OffsetY}
}

// CanvasToScreen is the inverse of ScreenToCanvas.
func (v Viewport) CanvasToScreen(p Point) Point {
	s := v.scale()
	return Point{X: (p.X + v.OffsetX) * s, Y: (p.Y + v.OffsetY) * s}
}
