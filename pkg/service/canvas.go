package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/batch"
	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/hittest"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/overlay"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
	nmsync "github.com/mattsolo1/grove-nodemanager/pkg/sync"
)

// Host bundles the collaborators a canvas integration needs from the editor.
type Host struct {
	Graph    host.Graph
	Hooks    host.Hooks
	Frames   host.FrameScheduler
	Prompter host.Prompter
	Notifier host.Notifier
}

// Canvas is the store attached to one editor canvas: overlay painting,
// pointer routing, group actions and redraws.
type Canvas struct {
	svc         *Service
	host        Host
	logger      logrus.FieldLogger
	Interceptor *overlay.Interceptor
	Router      *hittest.Router
	Groups      *batch.Operations
	Redraw      *nmsync.RedrawScheduler

	sub      events.Subscription
	detached bool
}

// Attach installs the overlay on the host and starts redrawing on store
// changes. Attaching the same hooks again returns the existing canvas.
func (s *Service) Attach(h Host) (*Canvas, error) {
	if h.Graph == nil || h.Hooks == nil {
		return nil, fmt.Errorf("attach canvas: graph and hooks are required")
	}
	s.canvasMu.Lock()
	defer s.canvasMu.Unlock()
	if c, ok := s.canvases[h.Hooks]; ok {
		if c.detached {
			c.sub = c.Redraw.Attach(s.Bus)
			c.detached = false
		}
		return c, nil
	}

	logger := s.Logger.WithField("component", "canvas")

	c := &Canvas{svc: s, host: h, logger: logger}
	c.Interceptor = overlay.NewInterceptor(s.Store, overlay.NewRegions(), logger)
	if !c.Interceptor.Install(h.Hooks, h.Graph) {
		logger.Debug("overlay hooks already installed")
	}
	c.Groups = batch.New(s.Store, h.Graph, h.Prompter, h.Notifier, logger)
	c.Router = hittest.NewRouter(h.Graph, c.Interceptor.Regions(), c, logger)
	c.Redraw = nmsync.NewRedrawScheduler(h.Frames, c.Interceptor)
	c.sub = c.Redraw.Attach(s.Bus)
	c.Redraw.Request()
	if s.canvases == nil {
		s.canvases = make(map[host.Hooks]*Canvas)
	}
	s.canvases[h.Hooks] = c
	return c, nil
}

// Detach stops redraw requests. Host hooks stay wrapped, so a later Attach
// to the same hooks gets this canvas back.
func (c *Canvas) Detach() {
	c.svc.canvasMu.Lock()
	defer c.svc.canvasMu.Unlock()
	c.sub.Unsubscribe()
	c.detached = true
}

// HandlePointerDown forwards a pointer-down from the host.
func (c *Canvas) HandlePointerDown(e *hittest.PointerEvent) bool {
	return c.Router.HandlePointerDown(e)
}

// HandleClick forwards a click from the host.
func (c *Canvas) HandleClick(e *hittest.PointerEvent) bool {
	return c.Router.HandleClick(e)
}

func (c *Canvas) notify(level host.Level, format string, args ...interface{}) {
	if c.host.Notifier != nil {
		c.host.Notifier.Notify(level, fmt.Sprintf(format, args...))
	}
}

func (c *Canvas) label(id string) string {
	fallback := id
	if nt, ok := c.svc.Registry.Get(id); ok && nt.DisplayName != "" {
		fallback = nt.DisplayName
	}
	return c.svc.Store.DisplayName(id, fallback)
}

// warnUnknown tells the user when a type is missing from a non-empty
// registry. The action still proceeds by id.
func (c *Canvas) warnUnknown(id string) {
	if c.svc.Registry.Len() == 0 {
		return
	}
	if _, ok := c.svc.Registry.Get(id); !ok {
		c.notify(host.LevelWarning, "Node type %q is not in the registry. It is classified by id.", id)
	}
}

// ToggleFavorite flips the favorite state of a node type.
func (c *Canvas) ToggleFavorite(nodeTypeID string) error {
	fav, err := c.svc.Store.ToggleFavorite(nodeTypeID)
	if err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{"node_type": nodeTypeID, "favorite": fav}).Debug("favorite toggled")
	return nil
}

// EditNote opens the note editor. Dismissing it changes nothing.
func (c *Canvas) EditNote(nodeTypeID string) error {
	if c.host.Prompter == nil {
		return fmt.Errorf("edit note: no note editor available")
	}
	current, _ := c.svc.Store.Note(nodeTypeID)
	c.host.Prompter.EditNote(nodeTypeID, current, func(text string) {
		if err := c.svc.Store.SetNote(nodeTypeID, text); err != nil {
			c.notify(host.LevelError, "%s", store.UserMessage("save note", err))
			return
		}
		if strings.TrimSpace(text) == "" {
			c.notify(host.LevelInfo, "Note removed from %s.", c.label(nodeTypeID))
		} else {
			c.notify(host.LevelSuccess, "Note saved for %s.", c.label(nodeTypeID))
		}
	})
	return nil
}

// Classify opens the folder picker for one node type.
func (c *Canvas) Classify(nodeTypeID string) error {
	if c.host.Prompter == nil {
		return fmt.Errorf("classify: no folder picker available")
	}
	c.warnUnknown(nodeTypeID)
	c.host.Prompter.PickFolder(host.FolderPick{
		Title:         fmt.Sprintf("Add %s to folder", c.label(nodeTypeID)),
		NodeTypeIDs:   []string{nodeTypeID},
		SuggestedName: c.label(nodeTypeID),
	}, func(choice host.FolderChoice) {
		if err := c.applyClassify(nodeTypeID, choice); err != nil {
			c.logger.WithError(err).WithField("node_type", nodeTypeID).Warn("classify failed")
			c.notify(host.LevelError, "%s", store.UserMessage("add node to folder", err))
		}
	})
	return nil
}

func (c *Canvas) applyClassify(nodeTypeID string, choice host.FolderChoice) error {
	folderID := choice.FolderID
	if choice.NewFolder {
		id, err := c.svc.Store.CreateFolder(choice.Name, "")
		if err != nil {
			return fmt.Errorf("create folder: %w", err)
		}
		folderID = id
	}
	res, err := c.svc.Store.AddNodeToFolder(nodeTypeID, folderID)
	if err != nil {
		return fmt.Errorf("add node: %w", err)
	}
	f, _ := c.svc.Store.Folder(folderID)
	if res.Skipped > 0 {
		c.notify(host.LevelInfo, "%s is already in %q.", c.label(nodeTypeID), f.Name)
	} else {
		c.notify(host.LevelSuccess, "Added %s to %q.", c.label(nodeTypeID), f.Name)
	}
	return nil
}

// ClassifyGroup adds every node type inside a group to a folder.
func (c *Canvas) ClassifyGroup(g host.Group) error {
	return c.Groups.ClassifyGroup(g)
}

// ToggleGroupFavorite favorites every node type inside a group unless all of
// them already are, in which case it unfavorites them.
func (c *Canvas) ToggleGroupFavorite(g host.Group) (bool, int, error) {
	fav, n, err := c.Groups.ToggleGroupFavorite(g)
	if err != nil {
		return false, 0, err
	}
	c.logger.WithFields(logrus.Fields{"group": g.Title(), "favorite": fav, "changed": n}).Debug("group favorite toggled")
	return fav, n, nil
}

// GroupByTitle returns the first group on the canvas with the given title.
func (c *Canvas) GroupByTitle(title string) (host.Group, bool) {
	for _, g := range c.host.Graph.Groups() {
		if g.Title() == title {
			return g, true
		}
	}
	return nil, false
}
