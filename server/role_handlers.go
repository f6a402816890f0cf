package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
)

type roleRequest struct {
	ID         string   `json:"id"`
	ProviderID *string  `json:"provider_id"`
	ScopeIDs   []string `json:"scope_ids"`
}

type roleResponse struct {
	ID         string   `json:"id"`
	ProviderID *string  `json:"provider_id"`
	ScopeIDs   []string `json:"scope_ids"`
}

func roleView(r models.Role) roleResponse {
	return roleResponse{ID: r.ID, ProviderID: r.ProviderID, ScopeIDs: r.ScopeIDs()}
}

// requireRoleProvider checks the provider dimension of a role. A role with no
// provider is a platform role, managed by wildcard callers only.
func requireRoleProvider(c *gin.Context, auth Authorized, providerID *string) bool {
	if providerID == nil {
		return requireWildcard(c, auth)
	}
	return requireProvider(c, auth, *providerID)
}

func (s *Server) HandleListRoles(c *gin.Context) {
	auth := authorized(c)
	roles, total, err := s.Roles.List(c.Request.Context(), parsePager(c))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]roleResponse, 0, len(roles))
	if auth.Providers.IsWildcard() {
		for _, r := range roles {
			items = append(items, roleView(r))
		}
		c.JSON(http.StatusOK, store.Page{Items: items, Total: total})
		return
	}
	// Non-wildcard callers see only the roles of their granted providers.
	for _, r := range roles {
		if r.ProviderID != nil && auth.Providers.Contains(*r.ProviderID) {
			items = append(items, roleView(r))
		}
	}
	c.JSON(http.StatusOK, store.Page{Items: items, Total: int64(len(items))})
}

func (s *Server) HandleGetRole(c *gin.Context) {
	auth := authorized(c)
	r, err := s.Roles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireRoleProvider(c, auth, r.ProviderID) {
		return
	}
	c.JSON(http.StatusOK, roleView(r))
}

func (s *Server) HandleCreateRole(c *gin.Context) {
	auth := authorized(c)
	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireRoleProvider(c, auth, req.ProviderID) {
		return
	}
	r, err := s.Roles.Create(c.Request.Context(), models.Role{
		ID:         req.ID,
		ProviderID: req.ProviderID,
	}, req.ScopeIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, roleView(r))
}

func (s *Server) HandleUpdateRole(c *gin.Context) {
	auth := authorized(c)
	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}
	existing, err := s.Roles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireRoleProvider(c, auth, existing.ProviderID) {
		return
	}
	if !requireRoleProvider(c, auth, req.ProviderID) {
		return
	}
	err = s.Roles.Update(c.Request.Context(), models.Role{
		ID:         c.Param("id"),
		ProviderID: req.ProviderID,
	}, req.ScopeIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) HandleDeleteRole(c *gin.Context) {
	auth := authorized(c)
	existing, err := s.Roles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireRoleProvider(c, auth, existing.ProviderID) {
		return
	}
	if err := s.Roles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
