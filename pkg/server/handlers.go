package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
	"github.com/mattsolo1/grove-nodemanager/pkg/registry"
)

type saveConfigRequest struct {
	Config *models.Config `json:"config" validate:"required"`
}

type createFolderRequest struct {
	Name   string  `json:"name" validate:"required"`
	Parent *string `json:"parent"`
}

type renameFolderRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type deleteFoldersRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type moveFolderRequest struct {
	ID           string  `json:"id" validate:"required"`
	TargetParent *string `json:"target_parent"`
	TargetOrder  int     `json:"target_order" validate:"min=0"`
}

type toggleFolderRequest struct {
	ID string `json:"id" validate:"required"`
}

type toggleHiddenRequest struct {
	PluginNames []string `json:"pluginNames" validate:"required,min=1"`
	Action      string   `json:"action" validate:"omitempty,oneof=hide show"`
}

type toggleShowHiddenRequest struct {
	ShowHidden *bool `json:"showHidden" validate:"required"`
}

type nodesResponse struct {
	Success    bool              `json:"success"`
	Nodes      []registry.Entry  `json:"nodes"`
	Plugins    []registry.Source `json:"plugins"`
	TotalCount int               `json:"total_count"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, persistence.Response{Success: true, Config: s.svc.Snapshot()})
}

func (s *Server) handleSaveConfig(c *gin.Context) {
	var req saveConfigRequest
	if !s.bind(c, &req) {
		return
	}
	s.svc.Store.Replace(req.Config, "api")
	if err := s.svc.Syncer.Save(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, persistence.Response{Success: true, Message: "config saved"})
}

func (s *Server) handleCreateFolder(c *gin.Context) {
	var req createFolderRequest
	if !s.bind(c, &req) {
		return
	}
	id, err := s.svc.Store.CreateFolder(req.Name, deref(req.Parent))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !s.persist(c) {
		return
	}
	f, _ := s.svc.Store.Folder(id)
	c.JSON(http.StatusOK, persistence.Response{Success: true, Folder: persistence.NewFolderInfo(f)})
}

func (s *Server) handleRenameFolder(c *gin.Context) {
	var req renameFolderRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.svc.Store.RenameFolder(req.ID, req.Name); err != nil {
		s.fail(c, err)
		return
	}
	if !s.persist(c) {
		return
	}
	c.JSON(http.StatusOK, persistence.Response{Success: true, Message: "folder renamed"})
}

func (s *Server) handleDeleteFolders(c *gin.Context) {
	var req deleteFoldersRequest
	if !s.bind(c, &req) {
		return
	}
	removed, err := s.svc.Store.DeleteFolders(req.IDs)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !s.persist(c) {
		return
	}
	c.JSON(http.StatusOK, persistence.Response{
		Success: true,
		Message: "deleted " + strconv.Itoa(len(removed)) + " folders",
		Deleted: removed,
	})
}

func (s *Server) handleMoveFolder(c *gin.Context) {
	var req moveFolderRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.svc.Store.MoveFolder(req.ID, deref(req.TargetParent), req.TargetOrder); err != nil {
		s.fail(c, err)
		return
	}
	if !s.persist(c) {
		return
	}
	c.JSON(http.StatusOK, persistence.Response{Success: true, Message: "folder moved"})
}

func (s *Server) handleToggleFolder(c *gin.Context) {
	var req toggleFolderRequest
	if !s.bind(c, &req) {
		return
	}
	expanded, err := s.svc.Store.ToggleFolderExpanded(req.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !s.persist(c) {
		return
	}
	c.JSON(http.StatusOK, persistence.Response{Success: true, Expanded: &expanded})
}

func (s *Server) handleToggleHidden(c *gin.Context) {
	var req toggleHiddenRequest
	if !s.bind(c, &req) {
		return
	}
	s.svc.Store.SetHidden(req.PluginNames, req.Action != "show")
	if !s.persist(c) {
		return
	}
	c.JSON(http.StatusOK, persistence.Response{Success: true, HiddenPlugins: s.svc.Store.Hidden()})
}

func (s *Server) handleToggleShowHidden(c *gin.Context) {
	var req toggleShowHiddenRequest
	if !s.bind(c, &req) {
		return
	}
	s.svc.Store.SetShowHidden(*req.ShowHidden)
	if !s.persist(c) {
		return
	}
	show := s.svc.Store.ShowHidden()
	c.JSON(http.StatusOK, persistence.Response{Success: true, ShowHiddenPlugins: &show})
}

func (s *Server) handleNodes(c *gin.Context) {
	favorites, _ := strconv.ParseBool(c.Query("favorites"))
	includeHidden, _ := strconv.ParseBool(c.Query("include_hidden"))
	entries := s.svc.Registry.List(s.svc.Store, registry.Filter{
		Query:         c.Query("q"),
		Source:        c.Query("source"),
		FolderID:      c.Query("folder"),
		FavoritesOnly: favorites,
		IncludeHidden: includeHidden,
	})
	if entries == nil {
		entries = []registry.Entry{}
	}
	c.JSON(http.StatusOK, nodesResponse{
		Success:    true,
		Nodes:      entries,
		Plugins:    s.svc.Registry.Sources(s.svc.Store),
		TotalCount: len(entries),
	})
}

func (s *Server) handleNodeSources(c *gin.Context) {
	sources := make(map[string]string, s.svc.Registry.Len())
	for _, nt := range s.svc.Registry.All() {
		sources[nt.ID] = nt.SourceID()
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "node_sources": sources})
}
