package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
)

type userUpdateRequest struct {
	Active  bool     `json:"active"`
	RoleIDs []string `json:"role_ids"`
}

type userResponse struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Active   bool     `json:"active"`
	Verified bool     `json:"verified"`
	RoleIDs  []string `json:"role_ids"`
}

func userView(u models.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Active:   u.Active,
		Verified: u.Verified,
		RoleIDs:  u.RoleIDs(),
	}
}

// User administration has no provider dimension.

func (s *Server) HandleListUsers(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	users, total, err := s.Users.List(c.Request.Context(), parsePager(c))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, userView(u))
	}
	c.JSON(http.StatusOK, store.Page{Items: items, Total: total})
}

func (s *Server) HandleGetUser(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	u, err := s.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (s *Server) HandleUpdateUser(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	var req userUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.Users.Update(c.Request.Context(), c.Param("id"), req.Active, req.RoleIDs); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) HandleDeleteUser(c *gin.Context) {
	if !requireWildcard(c, authorized(c)) {
		return
	}
	if err := s.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
