package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/store"
)

// The scope catalogue is platform metadata with no provider dimension, so
// reading it requires wildcard applicability of the scope-read grant.

func (s *Server) HandleListScopes(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	scopes, total, err := s.Scopes.List(c.Request.Context(), parsePager(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, store.Page{Items: scopes, Total: total})
}

func (s *Server) HandleGetScope(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	scope, err := s.Scopes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scope)
}
