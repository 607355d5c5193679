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

// AdminHandler serves the admin panel's stats, users, receipts and
// settings endpoints. Every write goes upstream with the caller's
// Telegram ID; rejections come back as upstream errors.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Stats godoc
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	claims := middleware.GetClaims(c)

	stats, err := h.adminService.Stats(c.Request.Context(), claims.TelegramID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Activity godoc
// GET /api/v1/admin/activity
func (h *AdminHandler) Activity(c *gin.Context) {
	claims := middleware.GetClaims(c)

	feed, err := h.adminService.Activity(c.Request.Context(), claims.TelegramID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"activity": feed})
}

// Users godoc
// GET /api/v1/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	claims := middleware.GetClaims(c)

	users, err := h.adminService.Users(c.Request.Context(), claims.TelegramID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// UpdateUser godoc
// PATCH /api/v1/admin/users/:telegram_id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	claims := middleware.GetClaims(c)

	telegramID, ok := parseInt64Param(c, "telegram_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil || len(patch) == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	user, err := h.adminService.UpdateUser(c.Request.Context(), claims.TelegramID, telegramID, patch)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Receipts godoc
// GET /api/v1/admin/receipts
func (h *AdminHandler) Receipts(c *gin.Context) {
	claims := middleware.GetClaims(c)

	receipts, err := h.adminService.Receipts(c.Request.Context(), claims.TelegramID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"receipts": receipts})
}

type verifyReceiptRequest struct {
	Action  string   `json:"action" binding:"required,oneof=accept reject"`
	Amount  *float64 `json:"amount"`
	Comment string   `json:"comment"`
}

// VerifyReceipt godoc
// POST /api/v1/admin/receipts/:receipt_id/verify
func (h *AdminHandler) VerifyReceipt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	receiptID, ok := parseInt64Param(c, "receipt_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req verifyReceiptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.adminService.VerifyReceipt(c.Request.Context(), claims.TelegramID, receiptID, model.VerifyReceiptPayload{
		Action:  req.Action,
		Amount:  req.Amount,
		Comment: req.Comment,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

// Settings godoc
// GET /api/v1/admin/settings
// The editable flag reflects the caller's role snapshot; the upstream
// still decides on write.
func (h *AdminHandler) Settings(c *gin.Context) {
	claims := middleware.GetClaims(c)

	view, err := h.adminService.Settings(c.Request.Context(), claims.TelegramID, claims.Role)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// UpdateSettings godoc
// PATCH /api/v1/admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var doc model.Settings
	if err := c.ShouldBindJSON(&doc); err != nil || len(doc) == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	updated, err := h.adminService.UpdateSettings(c.Request.Context(), claims.TelegramID, doc)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"settings": updated})
}
