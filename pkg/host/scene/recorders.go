package scene

import (
	"sync"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
)

// GlyphCall is one recorded DrawGlyph call.
type GlyphCall struct {
	Glyph  host.Glyph
	Rect   geom.Rect
	Active bool
}

// Recorder is a host.Painter that keeps every call.
type Recorder struct {
	mu    sync.Mutex
	Calls []GlyphCall
}

func (r *Recorder) DrawGlyph(g host.Glyph, rect geom.Rect, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, GlyphCall{Glyph: g, Rect: rect, Active: active})
}

// Reset drops recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = nil
}

// Count returns how many glyphs of kind g were drawn.
func (r *Recorder) Count(g host.Glyph) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c.Glyph == g {
			n++
		}
	}
	return n
}

// Prompter answers dialogs from preset values. A nil answer dismisses the
// dialog without calling back.
type Prompter struct {
	NoteAnswer   *string
	FolderAnswer *host.FolderChoice

	NoteRequests   []string
	FolderRequests []host.FolderPick
}

func (p *Prompter) EditNote(nodeTypeID, current string, done func(text string)) {
	p.NoteRequests = append(p.NoteRequests, nodeTypeID)
	if p.NoteAnswer != nil {
		done(*p.NoteAnswer)
	}
}

func (p *Prompter) PickFolder(req host.FolderPick, done func(host.FolderChoice)) {
	p.FolderRequests = append(p.FolderRequests, req)
	if p.FolderAnswer != nil {
		done(*p.FolderAnswer)
	}
}

// Message is a recorded notification.
type Message struct {
	Level host.Level
	Text  string
}

// Notifier records notifications.
type Notifier struct {
	mu       sync.Mutex
	Messages []Message
}

func (n *Notifier) Notify(level host.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, Message{Level: level, Text: message})
}

// Last returns the most recent notification.
func (n *Notifier) Last() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Messages) == 0 {
		return Message{}, false
	}
	return n.Messages[len(n.Messages)-1], true
}
