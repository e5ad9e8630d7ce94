// Package tree builds the folder tree shown by the browser views: a
// synthesized favorites view followed by the user's folders and the node
// types classified into them.
package tree

import (
	"sort"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// ItemType categorizes the different kinds of items in the tree.
type ItemType string

const (
	TypeFavorites ItemType = "favorites" // The synthesized favorites view
	TypeFolder    ItemType = "folder"
	TypeNode      ItemType = "node" // A node type inside a folder or favorites
)

// FavoritesID is the id of the synthesized favorites item.
const FavoritesID = "__favorites__"

// Item represents a single entry in the tree.
type Item struct {
	ID       string
	Name     string
	Type     ItemType
	Expanded bool
	Favorite bool
	HasNote  bool
	Metadata map[string]interface{}

	// Hierarchy
	Parent   *Item
	Children []*Item
}

// IsContainer reports whether the item can hold children.
func (i *Item) IsContainer() bool {
	return i.Type == TypeFolder || i.Type == TypeFavorites
}

// Depth returns the number of ancestors.
func (i *Item) Depth() int {
	d := 0
	for p := i.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// FolderID returns the id of the folder the item is, or sits in. It is empty
// for favorites and their nodes.
func (i *Item) FolderID() string {
	switch i.Type {
	case TypeFolder:
		return i.ID
	case TypeNode:
		if i.Parent != nil && i.Parent.Type == TypeFolder {
			return i.Parent.ID
		}
	}
	return ""
}

// Labeler returns the display label for a node type id.
type Labeler func(nodeTypeID string) string

// Build creates the tree from a config snapshot. Within a folder, subfolders
// come before node types. A nil label uses custom names, then the id.
func Build(cfg *models.Config, label Labeler) []*Item {
	if label == nil {
		label = func(id string) string {
			if name, ok := cfg.NodeCustomNames[id]; ok && name != "" {
				return name
			}
			return id
		}
	}
	favs := make(map[string]struct{}, len(cfg.Favorites))
	for _, id := range cfg.Favorites {
		favs[id] = struct{}{}
	}
	node := func(id string, parent *Item) *Item {
		_, fav := favs[id]
		_, note := cfg.Notes[id]
		return &Item{ID: id, Name: label(id), Type: TypeNode, Favorite: fav, HasNote: note, Parent: parent}
	}

	children := make(map[string][]string)
	for id, f := range cfg.Folders {
		children[f.Parent] = append(children[f.Parent], id)
	}
	for _, ids := range children {
		sort.Slice(ids, func(i, j int) bool {
			a, b := cfg.Folders[ids[i]], cfg.Folders[ids[j]]
			if a.Order != b.Order {
				return a.Order < b.Order
			}
			return a.Name < b.Name
		})
	}

	favorites := &Item{ID: FavoritesID, Name: "Favorites", Type: TypeFavorites, Expanded: true}
	for _, id := range cfg.Favorites {
		favorites.Children = append(favorites.Children, node(id, favorites))
	}
	roots := []*Item{favorites}

	var folder func(id string, parent *Item) *Item
	folder = func(id string, parent *Item) *Item {
		f := cfg.Folders[id]
		item := &Item{
			ID:       id,
			Name:     f.Name,
			Type:     TypeFolder,
			Expanded: f.Expanded,
			Parent:   parent,
			Metadata: map[string]interface{}{"level": f.Level, "order": f.Order},
		}
		for _, child := range children[id] {
			item.Children = append(item.Children, folder(child, item))
		}
		for _, nodeID := range cfg.FolderNodes[id] {
			item.Children = append(item.Children, node(nodeID, item))
		}
		return item
	}
	for _, id := range children[""] {
		roots = append(roots, folder(id, nil))
	}
	return roots
}

// Flatten walks the tree depth first. Children of collapsed containers are
// skipped unless all is true.
func Flatten(roots []*Item, all bool) []*Item {
	var out []*Item
	var walk func(items []*Item)
	walk = func(items []*Item) {
		for _, it := range items {
			out = append(out, it)
			if it.IsContainer() && (all || it.Expanded) {
				walk(it.Children)
			}
		}
	}
	walk(roots)
	return out
}

// Find returns the first item with the given type and id.
func Find(roots []*Item, typ ItemType, id string) *Item {
	for _, it := range Flatten(roots, true) {
		if it.Type == typ && it.ID == id {
			return it
		}
	}
	return nil
}
