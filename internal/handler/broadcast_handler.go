package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/middleware"
	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
	"github.com/titulhq/titul-gateway/internal/validator"
)

// BroadcastHandler serves the admin broadcast screen. Create and edit
// return 202: the upstream call completes in the background and a
// failure shows up with the next history fetch.
type BroadcastHandler struct {
	broadcastService *service.BroadcastService
}

// NewBroadcastHandler creates a new BroadcastHandler.
func NewBroadcastHandler(broadcastService *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcastService: broadcastService}
}

// History godoc
// GET /api/v1/admin/broadcasts
// Also registers the caller with the background poller.
func (h *BroadcastHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)

	view, err := h.broadcastService.History(c.Request.Context(), claims.TelegramID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// Unwatch godoc
// DELETE /api/v1/admin/broadcasts/watch
// Stops background polling for the caller when the screen closes.
func (h *BroadcastHandler) Unwatch(c *gin.Context) {
	claims := middleware.GetClaims(c)

	if err := h.broadcastService.Unwatch(c.Request.Context(), claims.TelegramID); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unwatched": true})
}

type broadcastRequest struct {
	Message     string   `json:"message" binding:"required"`
	TargetRoles []string `json:"target_roles"`
}

// Create godoc
// POST /api/v1/admin/broadcasts
func (h *BroadcastHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req broadcastRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.broadcastService.Create(c.Request.Context(), claims.TelegramID, model.BroadcastDraft{
		Message:     req.Message,
		TargetRoles: req.TargetRoles,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"accepted": true})
}

// Edit godoc
// PATCH /api/v1/admin/broadcasts/:broadcast_id
func (h *BroadcastHandler) Edit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, ok := parseInt64Param(c, "broadcast_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req broadcastRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.broadcastService.Edit(c.Request.Context(), claims.TelegramID, id, model.BroadcastDraft{
		Message:     req.Message,
		TargetRoles: req.TargetRoles,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"accepted": true})
}

// Delete godoc
// DELETE /api/v1/admin/broadcasts/:broadcast_id
func (h *BroadcastHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, ok := parseInt64Param(c, "broadcast_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.broadcastService.Delete(c.Request.Context(), claims.TelegramID, id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
