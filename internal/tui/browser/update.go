package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-nodemanager/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
	"github.com/mattsolo1/grove-nodemanager/pkg/tree"
)

const deleteTag = "delete-folder"

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case savedMsg:
		if msg.err != nil {
			m.setError("save", msg.err)
		} else {
			m.setStatus("Saved.")
		}
		return m, nil

	case confirm.ConfirmedMsg:
		if msg.Tag == deleteTag {
			m.deleteFolders(m.pendingDel)
		}
		m.pendingDel = nil
		return m, nil

	case confirm.CancelledMsg:
		m.pendingDel = nil
		m.setStatus("")
		return m, nil

	case tea.KeyMsg:
		if m.confirm.Active {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureVisible()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		m.ensureVisible()

	case key.Matches(msg, m.keys.GoToTop):
		m.cursor = 0
		m.ensureVisible()

	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = len(m.items) - 1
		m.ensureVisible()

	case key.Matches(msg, m.keys.Toggle):
		m.toggle(cur)

	case key.Matches(msg, m.keys.NewFolder):
		m.parentID = ""
		cmd := m.startInput(inputNewFolder, nil, "New folder name", "")
		return m, cmd

	case key.Matches(msg, m.keys.NewSubfolder):
		if cur == nil || cur.FolderID() == "" {
			m.setStatus("Select a folder first.")
			break
		}
		m.parentID = cur.FolderID()
		cmd := m.startInput(inputNewFolder, nil, "New subfolder name", "")
		return m, cmd

	case key.Matches(msg, m.keys.Rename):
		if cur == nil || cur.Type == tree.TypeFavorites {
			break
		}
		prompt := "Rename folder"
		value := cur.Name
		if cur.Type == tree.TypeNode {
			prompt = "Display name (empty resets)"
			value, _ = m.svc.Store.CustomName(cur.ID)
		}
		cmd := m.startInput(inputRename, cur, prompt, value)
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		if cur == nil || cur.Type != tree.TypeFolder {
			break
		}
		m.pendingDel = []string{cur.ID}
		m.confirm.Activate(deleteTag, fmt.Sprintf("Delete folder %q and everything inside it?", cur.Name))

	case key.Matches(msg, m.keys.MoveUp):
		m.moveFolder(cur, -1)

	case key.Matches(msg, m.keys.MoveDown):
		m.moveFolder(cur, 1)

	case key.Matches(msg, m.keys.Favorite):
		if cur == nil || cur.Type != tree.TypeNode {
			break
		}
		fav, err := m.svc.Store.ToggleFavorite(cur.ID)
		switch {
		case err != nil:
			m.setError("favorite", err)
		case fav:
			m.setStatus(fmt.Sprintf("Added %s to favorites.", cur.Name))
		default:
			m.setStatus(fmt.Sprintf("Removed %s from favorites.", cur.Name))
		}
		m.refresh()

	case key.Matches(msg, m.keys.Note):
		if cur == nil || cur.Type != tree.TypeNode {
			break
		}
		note, _ := m.svc.Store.Note(cur.ID)
		cmd := m.startInput(inputNote, cur, "Note (empty removes)", note)
		return m, cmd

	case key.Matches(msg, m.keys.Remove):
		if cur == nil || cur.Type != tree.TypeNode || cur.FolderID() == "" {
			break
		}
		if _, err := m.svc.Store.RemoveNodesFromFolder([]string{cur.ID}, cur.FolderID()); err != nil {
			m.setError("remove node from folder", err)
			break
		}
		m.setStatus(fmt.Sprintf("Removed %s from %s.", cur.Name, cur.Parent.Name))
		m.refresh()

	case key.Matches(msg, m.keys.ShowHidden):
		show := !m.svc.Store.ShowHidden()
		m.svc.Store.SetShowHidden(show)
		if show {
			m.setStatus("Showing hidden plugins.")
		} else {
			m.setStatus("Hiding hidden plugins.")
		}

	case key.Matches(msg, m.keys.Search):
		cmd := m.startInput(inputFilter, nil, "Filter", m.filter)
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		svc := m.svc
		return m, func() tea.Msg {
			return savedMsg{err: svc.Syncer.Save(context.Background())}
		}
	}
	return m, nil
}

func (m *Model) startInput(mode inputMode, target *tree.Item, prompt, value string) tea.Cmd {
	m.mode = mode
	m.target = target
	m.input.Prompt = prompt + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == inputFilter {
			m.filter = ""
			m.refresh()
		}
		m.endInput()
		return m, nil
	case tea.KeyEnter:
		m.submit(m.input.Value())
		m.endInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputFilter {
		m.filter = m.input.Value()
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m *Model) endInput() {
	m.mode = inputNone
	m.target = nil
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) submit(value string) {
	switch m.mode {
	case inputNewFolder:
		id, err := m.svc.Store.CreateFolder(value, m.parentID)
		if err != nil {
			m.setError("create folder", err)
			return
		}
		if f, ok := m.svc.Store.Folder(id); ok {
			m.setStatus(fmt.Sprintf("Created folder %s.", f.Name))
		}
		m.refresh()
		m.selectItem(tree.TypeFolder, id)

	case inputRename:
		t := m.target
		if t == nil {
			return
		}
		var err error
		if t.Type == tree.TypeFolder {
			err = m.svc.Store.RenameFolder(t.ID, value)
		} else {
			err = m.svc.Store.SetCustomName(t.ID, value)
		}
		if err != nil {
			m.setError("rename", err)
			return
		}
		m.setStatus("Renamed.")
		m.refresh()

	case inputNote:
		if m.target == nil {
			return
		}
		if err := m.svc.Store.SetNote(m.target.ID, value); err != nil {
			m.setError("save note", err)
			return
		}
		if strings.TrimSpace(value) == "" {
			m.setStatus("Note removed.")
		} else {
			m.setStatus("Note saved.")
		}
		m.refresh()

	case inputFilter:
		m.filter = strings.TrimSpace(value)
		m.refresh()
	}
}

func (m *Model) toggle(cur *tree.Item) {
	if cur == nil || !cur.IsContainer() {
		return
	}
	if cur.Type == tree.TypeFavorites {
		m.favoritesCollapsed = !m.favoritesCollapsed
		m.refresh()
		return
	}
	if _, err := m.svc.Store.ToggleFolderExpanded(cur.ID); err != nil {
		m.setError("toggle folder", err)
		return
	}
	m.refresh()
}

func (m *Model) moveFolder(cur *tree.Item, delta int) {
	if cur == nil || cur.Type != tree.TypeFolder {
		return
	}
	f, ok := m.svc.Store.Folder(cur.ID)
	if !ok {
		return
	}
	order := f.Order + delta
	if order < 0 {
		return
	}
	if err := m.svc.Store.MoveFolder(f.ID, f.Parent, order); err != nil {
		m.setError("move folder", err)
		return
	}
	m.refresh()
}

func (m *Model) deleteFolders(ids []string) {
	if len(ids) == 0 {
		return
	}
	removed, err := m.svc.Store.DeleteFolders(ids)
	if err != nil {
		m.setError("delete folder", err)
		return
	}
	m.setStatus(fmt.Sprintf("Deleted %d folder(s).", len(removed)))
	m.refresh()
}

func (m *Model) selectItem(typ tree.ItemType, id string) {
	for i, it := range m.items {
		if it.Type == typ && it.ID == id {
			m.cursor = i
			m.ensureVisible()
			return
		}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(action string, err error) {
	m.status = store.UserMessage(action, err)
	m.statusErr = true
}
