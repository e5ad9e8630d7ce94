package events

import "time"

// Kind names an event type on the bus.
type Kind string

const (
	KindFolders           Kind = "folders"
	KindMembership        Kind = "membership"
	KindFavorites         Kind = "favorites"
	KindNotes             Kind = "notes"
	KindCustomNames       Kind = "custom-names"
	KindHidden            Kind = "hidden"
	KindSettings          Kind = "settings"
	KindConfigReloaded    Kind = "config-reloaded"
	KindPersistenceFailed Kind = "persistence-failed"
)

// Event is implemented by every payload published on the bus.
type Event interface {
	Kind() Kind
}

// FolderOp identifies the structural change behind a FoldersChanged event.
type FolderOp string

const (
	FolderCreated FolderOp = "created"
	FolderRenamed FolderOp = "renamed"
	FolderDeleted FolderOp = "deleted"
	FolderMoved   FolderOp = "moved"
	FolderToggled FolderOp = "toggled"
)

// FoldersChanged is published after any change to the folder forest.
type FoldersChanged struct {
	Op  FolderOp
	IDs []string
}

func (FoldersChanged) Kind() Kind { return KindFolders }

// MembershipChanged is published when node types enter or leave a folder.
type MembershipChanged struct {
	FolderID    string
	NodeTypeIDs []string
	Added       bool
}

func (MembershipChanged) Kind() Kind { return KindMembership }

// FavoritesChanged lists the node types whose favorite state changed.
type FavoritesChanged struct {
	NodeTypeIDs []string
	Favorited   bool
}

func (FavoritesChanged) Kind() Kind { return KindFavorites }

// NotesChanged is published when a note is set or removed.
type NotesChanged struct {
	NodeTypeID string
	HasNote    bool
}

func (NotesChanged) Kind() Kind { return KindNotes }

// CustomNamesChanged is published when a display label is set or cleared.
// Name is empty when the label was cleared.
type CustomNamesChanged struct {
	NodeTypeID string
	Name       string
}

func (CustomNamesChanged) Kind() Kind { return KindCustomNames }

// HiddenChanged lists the sources whose hidden state actually changed.
type HiddenChanged struct {
	SourceIDs []string
	Hidden    bool
}

func (HiddenChanged) Kind() Kind { return KindHidden }

// SettingsChanged is published when a display setting such as
// showHiddenPlugins changes.
type SettingsChanged struct {
	Key string
}

func (SettingsChanged) Kind() Kind { return KindSettings }

// ConfigReloaded is published after the whole state was replaced.
type ConfigReloaded struct {
	Source string
}

func (ConfigReloaded) Kind() Kind { return KindConfigReloaded }

// PersistenceFailed is published by the save worker when a snapshot could
// not be written. In-memory state is kept.
type PersistenceFailed struct {
	Err error
	At  time.Time
}

func (PersistenceFailed) Kind() Kind { return KindPersistenceFailed }

// Mutation reports whether e describes a change to persisted state.
func Mutation(e Event) bool {
	switch e.Kind() {
	case KindPersistenceFailed, KindConfigReloaded:
		return false
	}
	return true
}
