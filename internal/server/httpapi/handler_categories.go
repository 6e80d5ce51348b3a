package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListCategories(c *gin.Context) {
	items, err := s.deps.Categories.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]categoryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newCategoryResponse(item))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetCategory(c *gin.Context) {
	category, err := s.deps.Categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := s.deps.Categories.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := s.deps.Categories.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	if err := s.deps.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
