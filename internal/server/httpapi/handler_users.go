package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleProfile(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.deps.Users.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserListResponse(users))
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.deps.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (s *Server) handleEnableUser(c *gin.Context) {
	if err := s.deps.Users.Enable(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enabled"})
}

func (s *Server) handleDisableUser(c *gin.Context) {
	if err := s.deps.Users.Disable(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "disabled"})
}
