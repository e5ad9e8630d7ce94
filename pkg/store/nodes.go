package store

import (
	"sort"
	"strings"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// AddResult reports how many node types were added to a folder and how many
// were already present.
type AddResult struct {
	Added   int
	Skipped int
}

// AddNodeToFolder adds one node type to a folder. Adding an existing member
// is counted as skipped.
func (s *Store) AddNodeToFolder(nodeTypeID, folderID string) (AddResult, error) {
	return s.AddNodesToFolder([]string{nodeTypeID}, folderID)
}

// AddNodesToFolder adds node types to a folder, keeping insertion order.
func (s *Store) AddNodesToFolder(nodeTypeIDs []string, folderID string) (AddResult, error) {
	var res AddResult
	ids := cleanIDs(nodeTypeIDs)
	err := s.update(func(c *models.Config) ([]events.Event, error) {
		if _, ok := c.Folders[folderID]; !ok {
			return nil, &NotFoundError{Kind: "folder", IDs: []string{folderID}}
		}
		if len(ids) == 0 {
			return nil, &ValidationError{Field: "node types", Reason: "no node types given"}
		}
		members := c.FolderNodes[folderID]
		var added []string
		for _, id := range ids {
			if indexOf(members, id) >= 0 {
				res.Skipped++
				continue
			}
			members = append(members, id)
			added = append(added, id)
		}
		res.Added = len(added)
		if len(added) == 0 {
			return nil, nil
		}
		c.FolderNodes[folderID] = members
		return []events.Event{events.MembershipChanged{FolderID: folderID, NodeTypeIDs: added, Added: true}}, nil
	})
	return res, err
}

// RemoveNodesFromFolder removes node types from a folder and returns how many
// were actually members.
func (s *Store) RemoveNodesFromFolder(nodeTypeIDs []string, folderID string) (int, error) {
	ids := cleanIDs(nodeTypeIDs)
	var removed []string
	err := s.update(func(c *models.Config) ([]events.Event, error) {
		if _, ok := c.Folders[folderID]; !ok {
			return nil, &NotFoundError{Kind: "folder", IDs: []string{folderID}}
		}
		members := c.FolderNodes[folderID]
		for _, id := range ids {
			if i := indexOf(members, id); i >= 0 {
				members = removeAt(members, i)
				removed = append(removed, id)
			}
		}
		if len(removed) == 0 {
			return nil, nil
		}
		if len(members) == 0 {
			delete(c.FolderNodes, folderID)
		} else {
			c.FolderNodes[folderID] = members
		}
		return []events.Event{events.MembershipChanged{FolderID: folderID, NodeTypeIDs: removed, Added: false}}, nil
	})
	return len(removed), err
}

// FolderNodes returns the members of a folder in insertion order.
func (s *Store) FolderNodes(folderID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.cfg.FolderNodes[folderID]...)
}

// FoldersOf returns the ids of every folder containing the node type.
func (s *Store) FoldersOf(nodeTypeID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for folderID, members := range s.cfg.FolderNodes {
		if indexOf(members, nodeTypeID) >= 0 {
			out = append(out, folderID)
		}
	}
	sort.Strings(out)
	return out
}

// ToggleFavorite flips the favorite state and returns the new value.
func (s *Store) ToggleFavorite(nodeTypeID string) (bool, error) {
	nodeTypeID, err := requireNodeTypeID(nodeTypeID)
	if err != nil {
		return false, err
	}
	var favorited bool
	err = s.update(func(c *models.Config) ([]events.Event, error) {
		if i := indexOf(c.Favorites, nodeTypeID); i >= 0 {
			c.Favorites = removeAt(c.Favorites, i)
			favorited = false
		} else {
			c.Favorites = append(c.Favorites, nodeTypeID)
			favorited = true
		}
		return []events.Event{events.FavoritesChanged{NodeTypeIDs: []string{nodeTypeID}, Favorited: favorited}}, nil
	})
	return favorited, err
}

// BatchFavorite favorites every given node type and returns how many were
// newly favorited.
func (s *Store) BatchFavorite(nodeTypeIDs []string) int {
	return s.setFavorites(cleanIDs(nodeTypeIDs), true)
}

// BatchUnfavorite removes every given node type from favorites and returns
// how many were favorited before.
func (s *Store) BatchUnfavorite(nodeTypeIDs []string) int {
	return s.setFavorites(cleanIDs(nodeTypeIDs), false)
}

func (s *Store) setFavorites(ids []string, favorite bool) int {
	var changed []string
	_ = s.update(func(c *models.Config) ([]events.Event, error) {
		for _, id := range ids {
			i := indexOf(c.Favorites, id)
			switch {
			case favorite && i < 0:
				c.Favorites = append(c.Favorites, id)
				changed = append(changed, id)
			case !favorite && i >= 0:
				c.Favorites = removeAt(c.Favorites, i)
				changed = append(changed, id)
			}
		}
		if len(changed) == 0 {
			return nil, nil
		}
		return []events.Event{events.FavoritesChanged{NodeTypeIDs: changed, Favorited: favorite}}, nil
	})
	return len(changed)
}

// IsFavorite reports whether the node type is favorited.
func (s *Store) IsFavorite(nodeTypeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.cfg.Favorites, nodeTypeID) >= 0
}

// Favorites returns the favorites view in the order they were added.
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.cfg.Favorites...)
}

// SetNote stores a trimmed note. Whitespace-only text removes the note.
func (s *Store) SetNote(nodeTypeID, text string) error {
	nodeTypeID, err := requireNodeTypeID(nodeTypeID)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	return s.update(func(c *models.Config) ([]events.Event, error) {
		old, had := c.Notes[nodeTypeID]
		if text == "" {
			if !had {
				return nil, nil
			}
			delete(c.Notes, nodeTypeID)
			return []events.Event{events.NotesChanged{NodeTypeID: nodeTypeID, HasNote: false}}, nil
		}
		if had && old == text {
			return nil, nil
		}
		c.Notes[nodeTypeID] = text
		return []events.Event{events.NotesChanged{NodeTypeID: nodeTypeID, HasNote: true}}, nil
	})
}

// Note returns the note for a node type.
func (s *Store) Note(nodeTypeID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.cfg.Notes[nodeTypeID]
	return n, ok
}

// HasNote reports whether the node type has a note.
func (s *Store) HasNote(nodeTypeID string) bool {
	_, ok := s.Note(nodeTypeID)
	return ok
}

// SetCustomName overrides the display label. A blank name clears it.
func (s *Store) SetCustomName(nodeTypeID, name string) error {
	nodeTypeID, err := requireNodeTypeID(nodeTypeID)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		s.ClearCustomName(nodeTypeID)
		return nil
	}
	return s.update(func(c *models.Config) ([]events.Event, error) {
		if c.NodeCustomNames[nodeTypeID] == name {
			return nil, nil
		}
		c.NodeCustomNames[nodeTypeID] = name
		return []events.Event{events.CustomNamesChanged{NodeTypeID: nodeTypeID, Name: name}}, nil
	})
}

// ClearCustomName drops the display label override and reports whether one
// existed.
func (s *Store) ClearCustomName(nodeTypeID string) bool {
	nodeTypeID = strings.TrimSpace(nodeTypeID)
	var had bool
	_ = s.update(func(c *models.Config) ([]events.Event, error) {
		if _, had = c.NodeCustomNames[nodeTypeID]; !had {
			return nil, nil
		}
		delete(c.NodeCustomNames, nodeTypeID)
		return []events.Event{events.CustomNamesChanged{NodeTypeID: nodeTypeID}}, nil
	})
	return had
}

// CustomName returns the display label override.
func (s *Store) CustomName(nodeTypeID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.cfg.NodeCustomNames[nodeTypeID]
	return n, ok
}

// DisplayName returns the custom name, or fallback when none is set.
func (s *Store) DisplayName(nodeTypeID, fallback string) string {
	if n, ok := s.CustomName(nodeTypeID); ok {
		return n
	}
	return fallback
}

// SetHidden hides or shows sources and returns how many changed state.
func (s *Store) SetHidden(sourceIDs []string, hidden bool) int {
	ids := cleanIDs(sourceIDs)
	var changed []string
	_ = s.update(func(c *models.Config) ([]events.Event, error) {
		for _, id := range ids {
			i := indexOf(c.HiddenPlugins, id)
			switch {
			case hidden && i < 0:
				c.HiddenPlugins = append(c.HiddenPlugins, id)
				changed = append(changed, id)
			case !hidden && i >= 0:
				c.HiddenPlugins = removeAt(c.HiddenPlugins, i)
				changed = append(changed, id)
			}
		}
		if len(changed) == 0 {
			return nil, nil
		}
		return []events.Event{events.HiddenChanged{SourceIDs: changed, Hidden: hidden}}, nil
	})
	return len(changed)
}

// IsHidden reports whether a source is hidden.
func (s *Store) IsHidden(sourceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.cfg.HiddenPlugins, sourceID) >= 0
}

// Hidden returns the hidden sources sorted by id.
func (s *Store) Hidden() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedCopy(s.cfg.HiddenPlugins)
}

// SetShowHidden controls whether hidden sources appear in listings.
func (s *Store) SetShowHidden(show bool) {
	_ = s.update(func(c *models.Config) ([]events.Event, error) {
		if c.ShowHiddenPlugins == show {
			return nil, nil
		}
		c.ShowHiddenPlugins = show
		return []events.Event{events.SettingsChanged{Key: "showHiddenPlugins"}}, nil
	})
}

// ShowHidden reports whether hidden sources appear in listings.
func (s *Store) ShowHidden() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ShowHiddenPlugins
}
