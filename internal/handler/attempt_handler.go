package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/middleware"
	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
	"github.com/titulhq/titul-gateway/internal/validator"
)

// AttemptHandler serves the student answering-session endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// Lookup godoc
// GET /api/v1/attempts/code/:code
// Returns the pre-login test summary for an access code.
func (h *AttemptHandler) Lookup(c *gin.Context) {
	summary, err := h.attemptService.LookupByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": summary})
}

type startAttemptRequest struct {
	TestID      int64  `json:"test_id" binding:"required"`
	StudentName string `json:"student_name" binding:"required"`
}

// Start godoc
// POST /api/v1/attempts
// Opens an answering session after the upstream can-submit check.
func (h *AttemptHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req startAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.attemptService.Start(c.Request.Context(), claims.TelegramID, req.TestID, req.StudentName)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": sess})
}

// Get godoc
// GET /api/v1/attempts/:attempt_id
func (h *AttemptHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sess, err := h.attemptService.Get(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": sess})
}

type setAnswerRequest struct {
	Number int    `json:"question_number" binding:"required"`
	Slot   int    `json:"slot"`
	Letter string `json:"letter"`
	Value  string `json:"value"`
}

// SetChoice godoc
// POST /api/v1/attempts/:attempt_id/choice
func (h *AttemptHandler) SetChoice(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req setAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.attemptService.SetChoice(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"), req.Number, req.Letter)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": sess})
}

// SetSlot godoc
// POST /api/v1/attempts/:attempt_id/slot
func (h *AttemptHandler) SetSlot(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req setAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.attemptService.SetSlot(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"), req.Number, req.Slot, req.Value)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": sess})
}

// ─── Keyboard operations ────────────────────────────────────────────

// Focus godoc
// POST /api/v1/attempts/:attempt_id/keyboard/focus
func (h *AttemptHandler) Focus(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req focusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.attemptService.Focus(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"), req.Coord, req.Selection)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"keyboard": sess.Keyboard})
}

// Blur godoc
// POST /api/v1/attempts/:attempt_id/keyboard/blur
func (h *AttemptHandler) Blur(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sess, err := h.attemptService.Blur(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"keyboard": sess.Keyboard})
}

// KeyPress godoc
// POST /api/v1/attempts/:attempt_id/keyboard/press
func (h *AttemptHandler) KeyPress(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req keyPressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, edit, err := h.attemptService.KeyPress(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"), req.Key, req.Text)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": sess, "edit": edit})
}

// ─── Submission ─────────────────────────────────────────────────────

// Unanswered godoc
// GET /api/v1/attempts/:attempt_id/unanswered
// Lists incomplete questions for the confirm dialog. Never blocks.
func (h *AttemptHandler) Unanswered(c *gin.Context) {
	claims := middleware.GetClaims(c)

	numbers, err := h.attemptService.Unanswered(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unanswered": numbers, "count": len(numbers)})
}

// Submit godoc
// POST /api/v1/attempts/:attempt_id/submit
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	result, err := h.attemptService.Submit(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Status godoc
// GET /api/v1/attempts/:attempt_id/status
// Proxies the upstream can-submit check for the open session.
func (h *AttemptHandler) Status(c *gin.Context) {
	claims := middleware.GetClaims(c)

	status, err := h.attemptService.Status(c.Request.Context(), claims.TelegramID, c.Param("attempt_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": status})
}
