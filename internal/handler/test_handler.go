package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/middleware"
	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
	"github.com/titulhq/titul-gateway/internal/validator"
)

// TestHandler serves the teacher's my-tests screen.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// ListMine godoc
// GET /api/v1/tests/mine
func (h *TestHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)

	tests, err := h.testService.ListMine(c.Request.Context(), claims.TelegramID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Get godoc
// GET /api/v1/tests/:test_id
func (h *TestHandler) Get(c *gin.Context) {
	id, ok := parseInt64Param(c, "test_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	t, err := h.testService.Get(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": t})
}

// Finish godoc
// POST /api/v1/tests/:test_id/finish
// Deactivates the test so no more submissions come in.
func (h *TestHandler) Finish(c *gin.Context) {
	id, ok := parseInt64Param(c, "test_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.Finish(c.Request.Context(), id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"finished": true})
}

// SendReport godoc
// POST /api/v1/tests/:test_id/report
// Asks the upstream to deliver the results report over Telegram.
func (h *TestHandler) SendReport(c *gin.Context) {
	id, ok := parseInt64Param(c, "test_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.SendReport(c.Request.Context(), id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type setExpiryRequest struct {
	ExpiresAt *string `json:"expires_at"`
}

// SetExpiry godoc
// PATCH /api/v1/tests/:test_id/expiry
// A null expires_at clears the deadline.
func (h *TestHandler) SetExpiry(c *gin.Context) {
	id, ok := parseInt64Param(c, "test_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req setExpiryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	expiresAt, valid := parseOptionalTime(req.ExpiresAt)
	if !valid {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if err := h.testService.SetExpiry(c.Request.Context(), id, expiresAt); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// Results godoc
// GET /api/v1/tests/:test_id/results
func (h *TestHandler) Results(c *gin.Context) {
	id, ok := parseInt64Param(c, "test_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rows, err := h.testService.Results(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": rows})
}

// ReportPDF godoc
// GET /api/v1/submissions/:submission_id/report
// Streams the upstream PDF through unchanged.
func (h *TestHandler) ReportPDF(c *gin.Context) {
	id, ok := parseInt64Param(c, "submission_id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	body, contentType, err := h.testService.ReportPDF(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%d.pdf"`, id))
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}
