package browser

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the folder browser.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	GoToTop      key.Binding
	GoToBottom   key.Binding
	Toggle       key.Binding
	NewFolder    key.Binding
	NewSubfolder key.Binding
	Rename       key.Binding
	Delete       key.Binding
	MoveUp       key.Binding
	MoveDown     key.Binding
	Favorite     key.Binding
	Note         key.Binding
	Remove       key.Binding
	ShowHidden   key.Binding
	Search       key.Binding
	Save         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.NewFolder, k.Favorite, k.Search, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.GoToTop, k.GoToBottom, k.Toggle},
		{k.NewFolder, k.NewSubfolder, k.Rename, k.Delete, k.MoveUp, k.MoveDown},
		{k.Favorite, k.Note, k.Remove, k.ShowHidden},
		{k.Search, k.Save, k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	GoToTop: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "go to top"),
	),
	GoToBottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "go to bottom"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "expand/collapse"),
	),
	NewFolder: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new folder"),
	),
	NewSubfolder: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "new subfolder"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete folder"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "move folder up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "move folder down"),
	),
	Favorite: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "toggle favorite"),
	),
	Note: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit note"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove from folder"),
	),
	ShowHidden: key.NewBinding(
		key.WithKeys("H"),
		key.WithHelp("H", "show hidden plugins"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Save: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "save now"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
