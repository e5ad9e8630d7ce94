// Package browser is the terminal folder browser: the same favorites and
// folder tree the canvas sidebar shows, editable from a terminal.
package browser

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"

	"github.com/mattsolo1/grove-nodemanager/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
	"github.com/mattsolo1/grove-nodemanager/pkg/tree"
)

// inputMode says what the text input is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputNewFolder
	inputRename
	inputNote
	inputFilter
)

const eventBuffer = 64

// storeChangedMsg is delivered when the store changed outside the browser,
// for example through the config server or an edit of the config file.
type storeChangedMsg struct {
	kind events.Kind
}

type savedMsg struct {
	err error
}

// Model is the bubbletea model for the folder browser.
type Model struct {
	svc *service.Service

	roots  []*tree.Item
	items  []*tree.Item
	cursor int
	offset int

	width  int
	height int
	keys   KeyMap
	help   help.Model

	input      textinput.Model
	mode       inputMode
	target     *tree.Item
	parentID   string
	filter     string
	confirm    confirm.Model
	pendingDel []string

	favoritesCollapsed bool
	status             string
	statusErr          bool

	changes chan events.Kind
	sub     events.Subscription
}

// New creates the browser and subscribes it to store events. Call Close when
// the program exits.
func New(svc *service.Service) Model {
	ti := textinput.New()
	ti.CharLimit = 200

	m := Model{
		svc:     svc,
		keys:    keys,
		help:    help.New(),
		input:   ti,
		confirm: confirm.New(),
		changes: make(chan events.Kind, eventBuffer),
	}
	changes := m.changes
	m.sub = svc.Bus.Subscribe(func(e events.Event) {
		select {
		case changes <- e.Kind():
		default:
		}
	})
	m.refresh()
	return m
}

// Close detaches the browser from the event bus.
func (m Model) Close() {
	m.sub.Unsubscribe()
}

func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		kind, ok := <-changes
		if !ok {
			return nil
		}
		return storeChangedMsg{kind: kind}
	}
}

func (m Model) label(id string) string {
	fallback := id
	if nt, ok := m.svc.Registry.Get(id); ok && nt.DisplayName != "" {
		fallback = nt.DisplayName
	}
	return m.svc.Store.DisplayName(id, fallback)
}

// refresh rebuilds the visible rows from the store, keeping the cursor on the
// same item when it still exists.
func (m *Model) refresh() {
	var keepType tree.ItemType
	var keepID, keepParent string
	if cur := m.current(); cur != nil {
		keepType, keepID, keepParent = cur.Type, cur.ID, parentKey(cur)
	}

	m.roots = tree.Build(m.svc.Snapshot(), m.label)
	if fav := tree.Find(m.roots, tree.TypeFavorites, tree.FavoritesID); fav != nil {
		fav.Expanded = !m.favoritesCollapsed
	}
	if m.filter != "" {
		m.items = filterItems(m.roots, m.filter)
	} else {
		m.items = tree.Flatten(m.roots, false)
	}

	m.cursor = clamp(m.cursor, 0, len(m.items)-1)
	if keepID != "" {
		for i, it := range m.items {
			if it.Type == keepType && it.ID == keepID && parentKey(it) == keepParent {
				m.cursor = i
				break
			}
		}
	}
	m.ensureVisible()
}

func parentKey(it *tree.Item) string {
	if it.Parent == nil {
		return ""
	}
	return it.Parent.ID
}

// filterItems lists every item whose label matches, with the folders leading
// to it, regardless of collapsed state.
func filterItems(roots []*tree.Item, query string) []*tree.Item {
	q := cases.Fold().String(strings.TrimSpace(query))
	keep := make(map[*tree.Item]bool)
	for _, it := range tree.Flatten(roots, true) {
		if strings.Contains(cases.Fold().String(it.Name), q) || strings.Contains(cases.Fold().String(it.ID), q) {
			for p := it; p != nil; p = p.Parent {
				keep[p] = true
			}
		}
	}
	var out []*tree.Item
	for _, it := range tree.Flatten(roots, true) {
		if keep[it] {
			out = append(out, it)
		}
	}
	return out
}

func (m Model) current() *tree.Item {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor]
}

func (m Model) viewportHeight() int {
	// Header, blank line, status and help.
	h := m.height - 5
	if h < 3 {
		return 3
	}
	return h
}

func (m *Model) ensureVisible() {
	vh := m.viewportHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
