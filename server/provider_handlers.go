package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
)

type providerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) HandleListProviders(c *gin.Context) {
	auth := authorized(c)
	providers, total, err := s.Providers.List(c.Request.Context(), parsePager(c))
	if err != nil {
		writeError(c, err)
		return
	}
	// The provider entity is its own provider dimension: non-wildcard
	// callers see only the providers they are granted.
	if !auth.Providers.IsWildcard() {
		filtered := make([]models.Provider, 0, len(providers))
		for _, p := range providers {
			if auth.Providers.Contains(p.ID) {
				filtered = append(filtered, p)
			}
		}
		providers = filtered
		total = int64(len(filtered))
	}
	c.JSON(http.StatusOK, store.Page{Items: providers, Total: total})
}

func (s *Server) HandleGetProvider(c *gin.Context) {
	auth := authorized(c)
	p, err := s.Providers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, p.ID) {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) HandleCreateProvider(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	var req providerRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.Providers.Create(c.Request.Context(), models.Provider{ID: req.ID, Name: req.Name})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) HandleUpdateProvider(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	var req providerRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.Providers.Update(c.Request.Context(), models.Provider{ID: c.Param("id"), Name: req.Name})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) HandleDeleteProvider(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	if err := s.Providers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
