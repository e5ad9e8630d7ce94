// Package host describes the node-graph editor this module plugs into. The
// editor owns the scene, the renderer and the input surface; this module only
// wraps its hooks and queries its state through these interfaces.
package host

import (
	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
)

// Node is a placed node instance on the canvas.
type Node interface {
	// InstanceID identifies the placed instance, not its type.
	InstanceID() string
	// Bounds covers the whole node in canvas coordinates. The title strip is
	// the top TitleHeight units of it.
	Bounds() geom.Rect
	// Collapsed reports the explicit collapsed flag.
	Collapsed() bool
}

// CollapsedSizer is implemented by nodes that know their collapsed width.
type CollapsedSizer interface {
	CollapsedWidth() float64
}

// Group is a rectangular container drawn on the canvas.
type Group interface {
	// Bounds is the group body in canvas coordinates. The title bar sits
	// above it.
	Bounds() geom.Rect
	Title() string
	Visible() bool
	Locked() bool
}

// GroupTitleHeighter is implemented by groups with their own title height.
type GroupTitleHeighter interface {
	TitleHeight() float64
}

// Graph is the scene query surface.
type Graph interface {
	Nodes() []Node
	Groups() []Group
	// NodeAt returns the topmost node whose body or title bar contains the
	// canvas point.
	NodeAt(p geom.Point) (Node, bool)
	Viewport() geom.Viewport
	TitleHeight() float64
}

// Glyph is one of the overlay controls.
type Glyph string

const (
	GlyphClassify Glyph = "classify"
	GlyphNote     Glyph = "note"
	GlyphFavorite Glyph = "favorite"
)

// Painter draws into the current frame. Rectangles are in the coordinate
// space the host established for the draw call.
type Painter interface {
	DrawGlyph(g Glyph, r geom.Rect, active bool)
}

// TitleDrawFunc paints a node's title bar. The painter is nil when the host
// has no surface for the node yet.
type TitleDrawFunc func(p Painter, n Node)

// GroupsDrawFunc paints all groups for a frame.
type GroupsDrawFunc func(p Painter, groups []Group)

// RemoveFunc is called when a node instance leaves the scene.
type RemoveFunc func(n Node)

// Hooks exposes the host extension points that can be wrapped.
type Hooks interface {
	TitleDraw() TitleDrawFunc
	SetTitleDraw(TitleDrawFunc)
	GroupsDraw() GroupsDrawFunc
	SetGroupsDraw(GroupsDrawFunc)
	OnRemove() RemoveFunc
	SetOnRemove(RemoveFunc)
}

// FrameScheduler runs fn before the next frame is painted.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// Prompter shows modal dialogs. A callback is not invoked when the user
// dismisses the dialog.
type Prompter interface {
	EditNote(nodeTypeID, current string, done func(text string))
	PickFolder(req FolderPick, done func(FolderChoice))
}

// FolderPick describes a folder picker dialog.
type FolderPick struct {
	Title string
	// NodeTypeIDs are the types being classified.
	NodeTypeIDs []string
	// SuggestedName is offered when the user asks for a new folder.
	SuggestedName string
}

// FolderChoice is the picker result. When NewFolder is set the caller
// creates a folder named Name instead of using FolderID.
type FolderChoice struct {
	FolderID  string
	NewFolder bool
	Name      string
}

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows non-blocking messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}
