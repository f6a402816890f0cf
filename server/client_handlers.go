package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
)

type clientRequest struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Secret     string   `json:"secret"`
	ProviderID *string  `json:"provider_id"`
	ScopeIDs   []string `json:"scope_ids"`
}

type clientResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ProviderID *string  `json:"provider_id"`
	ScopeIDs   []string `json:"scope_ids"`
}

func clientView(c models.Client) clientResponse {
	return clientResponse{
		ID:         c.ID,
		Name:       c.Name,
		ProviderID: c.ProviderID,
		ScopeIDs:   c.ScopeIDs(),
	}
}

// requireClientProvider checks the provider dimension of a client. A client
// without a provider is a platform client, visible to wildcard callers only.
func requireClientProvider(c *gin.Context, auth Authorized, providerID *string) bool {
	if providerID == nil {
		return requireWildcard(c, auth)
	}
	return requireProvider(c, auth, *providerID)
}

func (s *Server) HandleListClients(c *gin.Context) {
	auth := authorized(c)
	clients, total, err := s.Clients.List(c.Request.Context(), parsePager(c), providerFilter(auth))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]clientResponse, 0, len(clients))
	for _, cl := range clients {
		items = append(items, clientView(cl))
	}
	c.JSON(http.StatusOK, store.Page{Items: items, Total: total})
}

func (s *Server) HandleGetClient(c *gin.Context) {
	auth := authorized(c)
	cl, err := s.Clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireClientProvider(c, auth, cl.ProviderID) {
		return
	}
	c.JSON(http.StatusOK, clientView(cl))
}

func (s *Server) HandleCreateClient(c *gin.Context) {
	auth := authorized(c)
	var req clientRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireClientProvider(c, auth, req.ProviderID) {
		return
	}
	cl, err := s.Clients.Create(c.Request.Context(), models.Client{
		ID:         req.ID,
		Name:       req.Name,
		ProviderID: req.ProviderID,
	}, req.Secret, req.ScopeIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, clientView(cl))
}

func (s *Server) HandleUpdateClient(c *gin.Context) {
	auth := authorized(c)
	var req clientRequest
	if !bindJSON(c, &req) {
		return
	}
	existing, err := s.Clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireClientProvider(c, auth, existing.ProviderID) {
		return
	}
	if !requireClientProvider(c, auth, req.ProviderID) {
		return
	}
	err = s.Clients.Update(c.Request.Context(), models.Client{
		ID:         c.Param("id"),
		Name:       req.Name,
		ProviderID: req.ProviderID,
	}, req.Secret, req.ScopeIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) HandleDeleteClient(c *gin.Context) {
	auth := authorized(c)
	existing, err := s.Clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireClientProvider(c, auth, existing.ProviderID) {
		return
	}
	if err := s.Clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
