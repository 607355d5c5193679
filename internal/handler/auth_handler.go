package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/middleware"
	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
	"github.com/titulhq/titul-gateway/internal/validator"
)

// AuthHandler issues gateway session tokens.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type openSessionRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	Name       string `json:"name"`
}

// OpenSession godoc
// POST /api/v1/auth/session
// Issues a JWT for the Telegram user, snapshotting their upstream role.
func (h *AuthHandler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.authService.OpenSession(c.Request.Context(), req.TelegramID, req.Name)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sess)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the session claims for the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	name, err := h.authService.RecallStudentName(c.Request.Context(), claims.TelegramID)
	if err != nil {
		name = ""
	}

	response.Success(c, http.StatusOK, gin.H{
		"telegram_id":  claims.TelegramID,
		"name":         claims.Name,
		"role":         claims.Role,
		"student_name": name,
	})
}
