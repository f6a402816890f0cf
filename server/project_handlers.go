package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
)

type projectRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	CollectionIDs []string `json:"collection_ids"`
}

// Projects group collections across providers, so all project operations are
// platform-level: there is no provider dimension to restrict by.

func (s *Server) HandleListProjects(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	projects, total, err := s.Projects.List(c.Request.Context(), parsePager(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, store.Page{Items: projects, Total: total})
}

func (s *Server) HandleGetProject(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	p, err := s.Projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) HandleCreateProject(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.Projects.Create(c.Request.Context(), models.Project{
		ID:   req.ID,
		Name: req.Name,
	}, req.CollectionIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) HandleUpdateProject(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	err := s.Projects.Update(c.Request.Context(), models.Project{
		ID:   c.Param("id"),
		Name: req.Name,
	}, req.CollectionIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) HandleDeleteProject(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	if err := s.Projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
