// Package server exposes the classification store over HTTP under
// /node-manager, pushes store events to websocket clients and serves
// prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
)

// Server serves one service.
type Server struct {
	svc      *service.Service
	engine   *gin.Engine
	hub      *Hub
	validate *validator.Validate
	logger   logrus.FieldLogger
}

// New builds the router. Call Close to detach the websocket hub.
func New(svc *service.Service, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = svc.Logger
	}
	s := &Server{
		svc:      svc,
		engine:   gin.New(),
		validate: validator.New(),
		logger:   logger.WithField("component", "server"),
	}
	s.hub = NewHub(svc.Bus, s.logger)

	s.engine.Use(gin.Recovery(), s.observe())
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	nm := s.engine.Group("/node-manager")
	nm.GET("/config", s.handleGetConfig)
	nm.POST("/config", s.handleSaveConfig)
	nm.GET("/events", s.hub.HandleWebSocket)

	folder := nm.Group("/folder")
	folder.POST("/create", s.handleCreateFolder)
	folder.POST("/rename", s.handleRenameFolder)
	folder.POST("/delete", s.handleDeleteFolders)
	folder.POST("/move", s.handleMoveFolder)
	folder.POST("/toggle", s.handleToggleFolder)

	plugin := nm.Group("/plugin")
	plugin.POST("/toggle-hidden", s.handleToggleHidden)
	plugin.POST("/toggle-show-hidden", s.handleToggleShowHidden)

	nm.GET("/nodes", s.handleNodes)
	nm.GET("/node-sources", s.handleNodeSources)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.WithField("addr", addr).Info("config server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close disconnects websocket clients and stops forwarding events.
func (s *Server) Close() {
	s.hub.Close()
}

// errorStatus maps store errors onto the status codes clients expect.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrCycle),
		errors.Is(err, store.ErrMaxDepth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	entry := s.logger.WithError(err).WithField("path", c.FullPath())
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	c.JSON(status, persistence.Response{Success: false, Error: err.Error()})
}

// bind decodes and validates a JSON body.
func (s *Server) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.fail(c, &store.ValidationError{Field: "body", Reason: err.Error(), Err: err})
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(c, &store.ValidationError{Field: "body", Reason: err.Error(), Err: err})
		return false
	}
	return true
}

// persist saves after a mutation. The change stays in memory when the save
// fails, and the client is told.
func (s *Server) persist(c *gin.Context) bool {
	if err := s.svc.Syncer.Flush(c.Request.Context()); err != nil {
		s.fail(c, err)
		return false
	}
	return true
}
