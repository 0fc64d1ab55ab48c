package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wardrobeassistant/wardrobe/internal/service"
)

type categoryRequest struct {
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

func (s *Server) handleListCategories(c *gin.Context) {
	summaries, err := s.service.ListCategorySummaries(c.Request.Context())
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondWithError(c, badRequest("Invalid request body"))
		return
	}

	category, err := s.service.CreateCategory(c.Request.Context(), service.CreateCategoryInput{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (s *Server) handleGetCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}

	summary, err := s.service.GetCategorySummary(c.Request.Context(), id)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": summary})
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondWithError(c, badRequest("Invalid request body"))
		return
	}

	category, err := s.service.UpdateCategory(c.Request.Context(), id, service.UpdateCategoryInput{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}

	if err := s.service.DeleteCategory(c.Request.Context(), id); err != nil {
		s.respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleListCategoryItems answers 404 for an unknown category rather than an
// empty list, so a client holding a stale id learns that it is stale.
func (s *Server) handleListCategoryItems(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}

	category, items, err := s.service.GetCategoryWithItems(c.Request.Context(), id)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "items": items})
}

func (s *Server) handleSeedCategories(c *gin.Context) {
	seeded, err := s.service.SeedDefaultCategories(c.Request.Context())
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seeded": seeded})
}
