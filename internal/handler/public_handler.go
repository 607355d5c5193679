package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
)

// PublicHandler serves the unauthenticated endpoints.
type PublicHandler struct {
	publicService *service.PublicService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(publicService *service.PublicService) *PublicHandler {
	return &PublicHandler{publicService: publicService}
}

// Stats godoc
// GET /api/v1/public/stats
func (h *PublicHandler) Stats(c *gin.Context) {
	stats, err := h.publicService.Stats(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Announcements godoc
// GET /api/v1/public/announcements
func (h *PublicHandler) Announcements(c *gin.Context) {
	items, err := h.publicService.Announcements(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcements": items})
}

// Prices godoc
// GET /api/v1/public/prices
func (h *PublicHandler) Prices(c *gin.Context) {
	prices, err := h.publicService.Prices(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"prices": prices})
}
