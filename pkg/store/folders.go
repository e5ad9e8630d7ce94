package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// DefaultGroupFolderName is used when a group has no title.
const DefaultGroupFolderName = "Group"

// CreateFolder adds a folder under parentID, or at the root when parentID is
// empty. A name that collides with a sibling gets a " (n)" suffix.
func (s *Store) CreateFolder(name, parentID string) (string, error) {
	var id string
	err := s.update(func(c *models.Config) ([]events.Event, error) {
		var err error
		id, err = s.createFolderLocked(c, name, parentID, siblingNames(c, parentID))
		if err != nil {
			return nil, err
		}
		return []events.Event{events.FoldersChanged{Op: events.FolderCreated, IDs: []string{id}}}, nil
	})
	if err != nil {
		return "", err
	}
	s.logger.WithField("folder_id", id).Debug("created folder")
	return id, nil
}

// CreateFolderForGroup creates a root folder named after a canvas group. The
// name is made unique across all folders.
func (s *Store) CreateFolderForGroup(groupTitle string) (string, error) {
	name := strings.TrimSpace(groupTitle)
	if name == "" {
		name = DefaultGroupFolderName
	}
	var id string
	err := s.update(func(c *models.Config) ([]events.Event, error) {
		all := make(map[string]struct{}, len(c.Folders))
		for _, f := range c.Folders {
			all[f.Name] = struct{}{}
		}
		var err error
		id, err = s.createFolderLocked(c, name, "", all)
		if err != nil {
			return nil, err
		}
		return []events.Event{events.FoldersChanged{Op: events.FolderCreated, IDs: []string{id}}}, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) createFolderLocked(c *models.Config, name, parentID string, taken map[string]struct{}) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "folder name is required"}
	}

	level := 1
	if parentID != "" {
		parent, ok := c.Folders[parentID]
		if !ok {
			return "", &NotFoundError{Kind: "parent folder", IDs: []string{parentID}}
		}
		level = parent.Level + 1
	}
	if s.maxDepth > 0 && level > s.maxDepth {
		return "", &ValidationError{
			Field:  "parent",
			Reason: fmt.Sprintf("folders can be nested at most %d levels deep", s.maxDepth),
			Err:    ErrMaxDepth,
		}
	}

	order := 0
	first := true
	for _, f := range c.Folders {
		if f.Parent != parentID {
			continue
		}
		if first || f.Order+1 > order {
			order = f.Order + 1
			first = false
		}
	}

	id := s.newID()
	for _, exists := c.Folders[id]; exists || id == ""; _, exists = c.Folders[id] {
		id = s.newID()
	}

	c.Folders[id] = &models.Folder{
		ID:       id,
		Name:     uniqueName(name, taken),
		Parent:   parentID,
		Level:    level,
		Order:    order,
		Expanded: true,
	}
	return id, nil
}

// uniqueName appends " (n)" starting at 2 until the name is free.
func uniqueName(name string, taken map[string]struct{}) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func siblingNames(c *models.Config, parentID string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, f := range c.Folders {
		if f.Parent == parentID {
			names[f.Name] = struct{}{}
		}
	}
	return names
}

// RenameFolder changes a folder's display name. Renaming to the current name
// is a no-op.
func (s *Store) RenameFolder(id, name string) error {
	return s.update(func(c *models.Config) ([]events.Event, error) {
		f, ok := c.Folders[id]
		if !ok {
			return nil, &NotFoundError{Kind: "folder", IDs: []string{id}}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Reason: "folder name is required"}
		}
		if name == f.Name {
			return nil, nil
		}
		for otherID, other := range c.Folders {
			if otherID != id && other.Parent == f.Parent && other.Name == name {
				return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("a folder named %q already exists here", name)}
			}
		}
		f.Name = name
		return []events.Event{events.FoldersChanged{Op: events.FolderRenamed, IDs: []string{id}}}, nil
	})
}

// DeleteFolders removes every folder in ids together with its descendants
// and their membership entries. Nothing is removed if any id is unknown.
// It returns the ids that were removed.
func (s *Store) DeleteFolders(ids []string) ([]string, error) {
	ids = cleanIDs(ids)
	var removed []string
	err := s.update(func(c *models.Config) ([]events.Event, error) {
		var missing []string
		for _, id := range ids {
			if _, ok := c.Folders[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return nil, &NotFoundError{Kind: "folder", IDs: missing}
		}
		if len(ids) == 0 {
			return nil, nil
		}

		doomed := make(map[string]struct{})
		children := childIndex(c)
		for _, id := range ids {
			collectSubtree(children, id, doomed)
		}
		for id := range doomed {
			delete(c.Folders, id)
			delete(c.FolderNodes, id)
			removed = append(removed, id)
		}
		sort.Strings(removed)
		return []events.Event{events.FoldersChanged{Op: events.FolderDeleted, IDs: removed}}, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// MoveFolder re-parents id under newParentID (root when empty) at position
// newOrder among its new siblings. Old and new siblings are renumbered from
// zero. Moving a folder into its own subtree is rejected.
func (s *Store) MoveFolder(id, newParentID string, newOrder int) error {
	return s.update(func(c *models.Config) ([]events.Event, error) {
		f, ok := c.Folders[id]
		if !ok {
			return nil, &NotFoundError{Kind: "folder", IDs: []string{id}}
		}
		level := 1
		if newParentID != "" {
			parent, ok := c.Folders[newParentID]
			if !ok {
				return nil, &NotFoundError{Kind: "parent folder", IDs: []string{newParentID}}
			}
			level = parent.Level + 1
		}

		children := childIndex(c)
		subtree := make(map[string]struct{})
		collectSubtree(children, id, subtree)
		if _, inside := subtree[newParentID]; inside && newParentID != "" {
			return nil, &ValidationError{Field: "parent", Reason: ErrCycle.Error(), Err: ErrCycle}
		}
		if s.maxDepth > 0 {
			deepest := level + subtreeHeight(children, id, make(map[string]struct{})) - 1
			if deepest > s.maxDepth {
				return nil, &ValidationError{
					Field:  "parent",
					Reason: fmt.Sprintf("folders can be nested at most %d levels deep", s.maxDepth),
					Err:    ErrMaxDepth,
				}
			}
		}

		oldParent := f.Parent
		f.Parent = newParentID
		setLevels(c, children, id, level, make(map[string]struct{}))

		siblings := orderedChildren(c, newParentID, id)
		if newOrder < 0 {
			newOrder = 0
		}
		if newOrder > len(siblings) {
			newOrder = len(siblings)
		}
		siblings = append(siblings[:newOrder], append([]string{id}, siblings[newOrder:]...)...)
		for i, sid := range siblings {
			c.Folders[sid].Order = i
		}
		if oldParent != newParentID {
			for i, sid := range orderedChildren(c, oldParent, "") {
				c.Folders[sid].Order = i
			}
		}
		return []events.Event{events.FoldersChanged{Op: events.FolderMoved, IDs: []string{id}}}, nil
	})
}

// ToggleFolderExpanded flips the expanded flag and returns the new value.
func (s *Store) ToggleFolderExpanded(id string) (bool, error) {
	var expanded bool
	err := s.update(func(c *models.Config) ([]events.Event, error) {
		f, ok := c.Folders[id]
		if !ok {
			return nil, &NotFoundError{Kind: "folder", IDs: []string{id}}
		}
		f.Expanded = !f.Expanded
		expanded = f.Expanded
		return []events.Event{events.FoldersChanged{Op: events.FolderToggled, IDs: []string{id}}}, nil
	})
	return expanded, err
}

// Folder returns a copy of the folder with the given id.
func (s *Store) Folder(id string) (models.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.cfg.Folders[id]
	if !ok {
		return models.Folder{}, false
	}
	return *f, true
}

// Folders returns every folder sorted by level, order and name.
func (s *Store) Folders() []models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Folder, 0, len(s.cfg.Folders))
	for _, id := range s.cfg.SortedFolderIDs() {
		out = append(out, *s.cfg.Folders[id])
	}
	return out
}

// Children returns the direct children of parentID in sibling order.
func (s *Store) Children(parentID string) []models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := orderedChildren(s.cfg, parentID, "")
	out := make([]models.Folder, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.cfg.Folders[id])
	}
	return out
}

// FindFolder resolves a folder by id or, failing that, by exact name. Names
// must be unambiguous.
func (s *Store) FindFolder(ref string) (models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.cfg.Folders[ref]; ok {
		return *f, nil
	}
	var matches []*models.Folder
	for _, f := range s.cfg.Folders {
		if f.Name == ref {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return models.Folder{}, &NotFoundError{Kind: "folder", IDs: []string{ref}}
	case 1:
		return *matches[0], nil
	default:
		return models.Folder{}, &ValidationError{Field: "folder", Reason: fmt.Sprintf("name %q matches %d folders, use the id", ref, len(matches))}
	}
}

func childIndex(c *models.Config) map[string][]string {
	idx := make(map[string][]string, len(c.Folders))
	for id, f := range c.Folders {
		idx[f.Parent] = append(idx[f.Parent], id)
	}
	return idx
}

func collectSubtree(children map[string][]string, id string, into map[string]struct{}) {
	if _, seen := into[id]; seen {
		return
	}
	into[id] = struct{}{}
	for _, child := range children[id] {
		collectSubtree(children, child, into)
	}
}

// subtreeHeight counts levels in the subtree rooted at id, including id.
// Folders already visited are not descended into again.
func subtreeHeight(children map[string][]string, id string, visited map[string]struct{}) int {
	visited[id] = struct{}{}
	h := 0
	for _, child := range children[id] {
		if _, seen := visited[child]; seen {
			continue
		}
		if ch := subtreeHeight(children, child, visited); ch > h {
			h = ch
		}
	}
	return h + 1
}

func setLevels(c *models.Config, children map[string][]string, id string, level int, visited map[string]struct{}) {
	visited[id] = struct{}{}
	c.Folders[id].Level = level
	for _, child := range children[id] {
		if _, seen := visited[child]; seen {
			continue
		}
		setLevels(c, children, child, level+1, visited)
	}
}

// orderedChildren lists children of parentID by current order, skipping
// the excluded id.
func orderedChildren(c *models.Config, parentID, exclude string) []string {
	var ids []string
	for id, f := range c.Folders {
		if f.Parent == parentID && id != exclude {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := c.Folders[ids[i]], c.Folders[ids[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	return ids
}
