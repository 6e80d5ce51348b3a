package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sweetshop/backend/internal/server/repositories/sweets"
)

const defaultLowStockThreshold = 5

func (s *Server) handleListSweets(c *gin.Context) {
	items, err := s.deps.Sweets.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetListResponse(items))
}

func (s *Server) handleGetSweet(c *gin.Context) {
	sweet, err := s.deps.Sweets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetResponse(sweet))
}

func (s *Server) handleSearchSweets(c *gin.Context) {
	filter := sweets.SearchFilter{
		Name:       c.Query("name"),
		CategoryID: c.Query("categoryId"),
	}
	if v := c.Query("minPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minPrice"})
			return
		}
		filter.MinPrice = &p
	}
	if v := c.Query("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxPrice"})
			return
		}
		filter.MaxPrice = &p
	}
	if v := c.Query("onlyAvailable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid onlyAvailable"})
			return
		}
		filter.OnlyAvailable = b
	}

	items, err := s.deps.Sweets.Search(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetListResponse(items))
}

func (s *Server) handleListSweetsByCategory(c *gin.Context) {
	items, err := s.deps.Sweets.ListByCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetListResponse(items))
}

func (s *Server) handleCreateSweet(c *gin.Context) {
	var req sweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sweet, err := s.deps.Sweets.Create(c.Request.Context(), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSweetResponse(sweet))
}

func (s *Server) handleUpdateSweet(c *gin.Context) {
	var req sweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sweet, err := s.deps.Sweets.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetResponse(sweet))
}

func (s *Server) handleDeleteSweet(c *gin.Context) {
	if err := s.deps.Sweets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePurchaseSweet(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	remaining, err := s.deps.Sweets.Purchase(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}

func (s *Server) handleRestockSweet(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quantity, err := s.deps.Sweets.Restock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quantity": quantity})
}

func (s *Server) handleListLowStock(c *gin.Context) {
	threshold := defaultLowStockThreshold
	if v := c.Query("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}
		threshold = n
	}

	items, err := s.deps.Sweets.ListLowStock(c.Request.Context(), threshold)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetListResponse(items))
}

func (s *Server) handleListTopSelling(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	items, err := s.deps.Sweets.ListTopSelling(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetListResponse(items))
}

func (s *Server) handleListOutOfStock(c *gin.Context) {
	items, err := s.deps.Sweets.ListOutOfStock(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSweetListResponse(items))
}

// handleSweetImageUploadURL reserves an object key, stores it on the sweet,
// and hands the client a presigned PUT URL to upload the bytes directly.
func (s *Server) handleSweetImageUploadURL(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.deps.Sweets.Get(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	key, url, err := s.deps.Images.PresignedPutURL(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.deps.Sweets.SetImageURL(c.Request.Context(), id, key); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "uploadUrl": url})
}

func (s *Server) handleSweetImageURL(c *gin.Context) {
	sweet, err := s.deps.Sweets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sweet.ImageURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no image"})
		return
	}

	url, err := s.deps.Images.PresignedGetURL(c.Request.Context(), sweet.ImageURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
