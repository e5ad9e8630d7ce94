package overlay

import (
	"math"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
)

const (
	// ButtonSize is the side of every overlay glyph.
	ButtonSize = 16.0
	// ButtonGap separates the node title glyphs.
	ButtonGap = 3.0
	// GroupButtonMargin is the inset of the group glyph from the right edge.
	GroupButtonMargin = 6.0
	// groupButtonMinX keeps the group glyph inside very narrow groups.
	groupButtonMinX = 4.0
	// collapseTolerance is how close a size must be to count as collapsed.
	collapseTolerance = 2.0
)

// nodeGlyphs is the left-to-right order of the node title glyphs.
var nodeGlyphs = []host.Glyph{host.GlyphClassify, host.GlyphNote, host.GlyphFavorite}

// IsCollapsed reports whether a node is drawn as just its title.
func IsCollapsed(n host.Node, titleH float64) bool {
	if n.Collapsed() {
		return true
	}
	b := n.Bounds()
	if b.H <= titleH+collapseTolerance {
		return true
	}
	if cs, ok := n.(host.CollapsedSizer); ok {
		if w := cs.CollapsedWidth(); w > 0 && math.Abs(b.W-w) < collapseTolerance {
			return true
		}
	}
	return false
}

// NodeButtons lays out the title glyphs centred in a node of the given width,
// in node-local coordinates. It reports false when they do not fit.
func NodeButtons(width, titleH float64) ([]Button, bool) {
	total := ButtonSize*float64(len(nodeGlyphs)) + ButtonGap*float64(len(nodeGlyphs)-1)
	x := (width - total) / 2
	y := (titleH - ButtonSize) / 2
	if x < 0 || y < 0 || x+total > width || y+ButtonSize > titleH {
		return nil, false
	}

	buttons := make([]Button, 0, len(nodeGlyphs))
	for _, g := range nodeGlyphs {
		buttons = append(buttons, Button{
			Kind: g,
			Rect: geom.Rect{X: x, Y: y, W: ButtonSize, H: ButtonSize},
		})
		x += ButtonSize + ButtonGap
	}
	return buttons, true
}

// GroupButton places the group glyph in canvas coordinates, right-aligned in
// the title bar above the group body.
func GroupButton(g host.Group, defaultTitleH float64) geom.Rect {
	b := g.Bounds()
	headerH := defaultTitleH
	if th, ok := g.(host.GroupTitleHeighter); ok && th.TitleHeight() > 0 {
		headerH = th.TitleHeight()
	}
	x := b.X + math.Max(b.W-ButtonSize-GroupButtonMargin, groupButtonMinX)
	y := b.Y - headerH + (headerH-ButtonSize)/2
	return geom.Rect{X: x, Y: y, W: ButtonSize, H: ButtonSize}
}
