// Package batch applies classification and favorite actions to every node
// enclosed by a canvas group.
package batch

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/models"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
)

// Store is the part of the classification store batch operations mutate.
type Store interface {
	AddNodesToFolder(nodeTypeIDs []string, folderID string) (store.AddResult, error)
	CreateFolderForGroup(groupTitle string) (string, error)
	Folder(id string) (models.Folder, bool)
	IsFavorite(nodeTypeID string) bool
	BatchFavorite(nodeTypeIDs []string) int
	BatchUnfavorite(nodeTypeIDs []string) int
}

// EnclosedNodes returns the nodes whose whole bounding box lies inside the
// group body.
func EnclosedNodes(g host.Group, nodes []host.Node) []host.Node {
	if g == nil {
		return nil
	}
	gb := g.Bounds()
	var out []host.Node
	for _, n := range nodes {
		if n != nil && gb.ContainsRect(n.Bounds()) {
			out = append(out, n)
		}
	}
	return out
}

// TypeIDs resolves node type ids, dropping duplicates and keeping first-seen
// order.
func TypeIDs(nodes []host.Node) []string {
	seen := make(map[string]struct{}, len(nodes))
	var out []string
	for _, n := range nodes {
		id := host.NodeTypeID(n)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ShouldFavorite decides a group favorite toggle: favorite everything unless
// every type is already favorited.
func ShouldFavorite(ids []string, isFavorite func(string) bool) bool {
	for _, id := range ids {
		if !isFavorite(id) {
			return true
		}
	}
	return false
}

// Operations runs group actions against a store.
type Operations struct {
	store    Store
	graph    host.Graph
	prompter host.Prompter
	notifier host.Notifier
	logger   logrus.FieldLogger
}

// New creates group operations.
func New(s Store, graph host.Graph, prompter host.Prompter, notifier host.Notifier, logger logrus.FieldLogger) *Operations {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Operations{store: s, graph: graph, prompter: prompter, notifier: notifier, logger: logger}
}

func (o *Operations) notify(level host.Level, format string, args ...interface{}) {
	if o.notifier != nil {
		o.notifier.Notify(level, fmt.Sprintf(format, args...))
	}
}

func (o *Operations) enclosedTypes(g host.Group) []string {
	return TypeIDs(EnclosedNodes(g, o.graph.Nodes()))
}

func groupLabel(g host.Group) string {
	if t := strings.TrimSpace(g.Title()); t != "" {
		return t
	}
	return store.DefaultGroupFolderName
}

// ClassifyGroup asks for a folder and adds every enclosed node type to it.
// Dismissing the picker changes nothing.
func (o *Operations) ClassifyGroup(g host.Group) error {
	ids := o.enclosedTypes(g)
	if len(ids) == 0 {
		o.notify(host.LevelWarning, "Group %q has no nodes fully inside it.", groupLabel(g))
		return nil
	}
	if o.prompter == nil {
		return fmt.Errorf("classify group %q: no folder picker available", groupLabel(g))
	}

	o.prompter.PickFolder(host.FolderPick{
		Title:         fmt.Sprintf("Add %d node types from %q to folder", len(ids), groupLabel(g)),
		NodeTypeIDs:   ids,
		SuggestedName: groupLabel(g),
	}, func(choice host.FolderChoice) {
		if err := o.applyClassify(g, ids, choice); err != nil {
			o.logger.WithError(err).WithField("group", groupLabel(g)).Warn("group classify failed")
			o.notify(host.LevelError, "%s", store.UserMessage("add nodes to folder", err))
		}
	})
	return nil
}

func (o *Operations) applyClassify(g host.Group, ids []string, choice host.FolderChoice) error {
	folderID := choice.FolderID
	if choice.NewFolder {
		name := choice.Name
		if strings.TrimSpace(name) == "" {
			name = groupLabel(g)
		}
		id, err := o.store.CreateFolderForGroup(name)
		if err != nil {
			return fmt.Errorf("create folder for group: %w", err)
		}
		folderID = id
	}

	res, err := o.store.AddNodesToFolder(ids, folderID)
	if err != nil {
		return fmt.Errorf("add group nodes: %w", err)
	}
	name := folderID
	if f, ok := o.store.Folder(folderID); ok {
		name = f.Name
	}
	if res.Skipped > 0 {
		o.notify(host.LevelSuccess, "Added %d node types to %q (%d already there).", res.Added, name, res.Skipped)
	} else {
		o.notify(host.LevelSuccess, "Added %d node types to %q.", res.Added, name)
	}
	return nil
}

// ToggleGroupFavorite favorites every enclosed type when any is not yet
// favorited, otherwise unfavorites all of them. It returns the resulting
// state and how many types changed.
func (o *Operations) ToggleGroupFavorite(g host.Group) (bool, int, error) {
	ids := o.enclosedTypes(g)
	if len(ids) == 0 {
		o.notify(host.LevelWarning, "Group %q has no nodes fully inside it.", groupLabel(g))
		return false, 0, nil
	}
	if ShouldFavorite(ids, o.store.IsFavorite) {
		n := o.store.BatchFavorite(ids)
		o.notify(host.LevelSuccess, "Favorited %d node types.", len(ids))
		return true, n, nil
	}
	n := o.store.BatchUnfavorite(ids)
	o.notify(host.LevelInfo, "Removed %d node types from favorites.", n)
	return false, n, nil
}
