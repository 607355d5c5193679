package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/keyboard"
	"github.com/titulhq/titul-gateway/internal/middleware"
	"github.com/titulhq/titul-gateway/internal/policy"
	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
	"github.com/titulhq/titul-gateway/internal/validator"
)

// DraftHandler serves the test-authoring session endpoints.
type DraftHandler struct {
	draftService *service.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

type createDraftRequest struct {
	Title          string `json:"title" binding:"required"`
	Subject        string `json:"subject" binding:"required"`
	SubType        string `json:"sub_type"`
	SubmissionMode string `json:"submission_mode" binding:"required,oneof=single multiple"`
}

// Subjects godoc
// GET /api/v1/drafts/subjects
// Lists the selectable subjects with their sub-type availability.
func (h *DraftHandler) Subjects(c *gin.Context) {
	type subjectInfo struct {
		Name        string `json:"name"`
		HasSubTypes bool   `json:"has_sub_types"`
	}
	out := make([]subjectInfo, 0, len(policy.Subjects))
	for _, s := range policy.Subjects {
		out = append(out, subjectInfo{Name: s, HasSubTypes: policy.HasSubTypes(s)})
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": out})
}

// Create godoc
// POST /api/v1/drafts
// Opens a fresh authoring session with the default question block.
func (h *DraftHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req createDraftRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.Create(c.Request.Context(), claims.TelegramID, claims.Name, req.Title, req.Subject, req.SubType, req.SubmissionMode)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"draft": sess})
}

type editDraftRequest struct {
	TestID int64 `json:"test_id" binding:"required"`
}

// Edit godoc
// POST /api/v1/drafts/edit
// Opens an authoring session seeded from an existing test.
func (h *DraftHandler) Edit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req editDraftRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.Edit(c.Request.Context(), claims.TelegramID, claims.Name, req.TestID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"draft": sess})
}

// Get godoc
// GET /api/v1/drafts/:draft_id
func (h *DraftHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sess, err := h.draftService.Get(c.Request.Context(), claims.TelegramID, c.Param("draft_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

// Discard godoc
// DELETE /api/v1/drafts/:draft_id
// Drops the session; unsaved edits are gone, matching a closed editor.
func (h *DraftHandler) Discard(c *gin.Context) {
	claims := middleware.GetClaims(c)

	if err := h.draftService.Discard(c.Request.Context(), claims.TelegramID, c.Param("draft_id")); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"discarded": true})
}

type setMetaRequest struct {
	Title          string  `json:"title"`
	SubmissionMode string  `json:"submission_mode" binding:"omitempty,oneof=single multiple"`
	ExpiresAt      *string `json:"expires_at"`
}

// SetMeta godoc
// PATCH /api/v1/drafts/:draft_id
func (h *DraftHandler) SetMeta(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req setMetaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	expiresAt, ok := parseOptionalTime(req.ExpiresAt)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	sess, err := h.draftService.SetMeta(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.Title, req.SubmissionMode, expiresAt)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

// ─── Question operations ────────────────────────────────────────────

type setChoiceRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Letter     string `json:"letter"`
}

// SetChoice godoc
// POST /api/v1/drafts/:draft_id/choice
func (h *DraftHandler) SetChoice(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req setChoiceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.SetChoiceAnswer(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.QuestionID, req.Letter)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

// AppendQuestion godoc
// POST /api/v1/drafts/:draft_id/questions
// Appends the next question per the subject policy table.
func (h *DraftHandler) AppendQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sess, added, err := h.draftService.AppendQuestion(c.Request.Context(), claims.TelegramID, c.Param("draft_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"draft": sess, "question": added})
}

type partRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Part       int    `json:"part"`
}

// AddPart godoc
// POST /api/v1/drafts/:draft_id/parts
func (h *DraftHandler) AddPart(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req partRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.AddPart(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.QuestionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

// RemovePart godoc
// POST /api/v1/drafts/:draft_id/parts/remove
func (h *DraftHandler) RemovePart(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req partRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.RemovePart(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.QuestionID, req.Part)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

type alternativeRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Part       int    `json:"part"`
	Alt        int    `json:"alt"`
	Value      string `json:"value"`
}

// AddAlternative godoc
// POST /api/v1/drafts/:draft_id/alternatives
func (h *DraftHandler) AddAlternative(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req alternativeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.AddAlternative(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.QuestionID, req.Part)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

// RemoveAlternative godoc
// POST /api/v1/drafts/:draft_id/alternatives/remove
func (h *DraftHandler) RemoveAlternative(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req alternativeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.RemoveAlternative(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.QuestionID, req.Part, req.Alt)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

// UpdateAlternative godoc
// PUT /api/v1/drafts/:draft_id/alternatives
func (h *DraftHandler) UpdateAlternative(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req alternativeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.UpdateAlternative(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.QuestionID, req.Part, req.Alt, req.Value)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

type setPointsRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Points     string `json:"points"`
}

// SetPoints godoc
// POST /api/v1/drafts/:draft_id/points
func (h *DraftHandler) SetPoints(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req setPointsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.SetPoints(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.QuestionID, req.Points)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess})
}

// ─── Keyboard operations ────────────────────────────────────────────

type focusRequest struct {
	Coord     keyboard.Coordinate `json:"coord" binding:"required"`
	Selection keyboard.Selection  `json:"selection"`
}

// Focus godoc
// POST /api/v1/drafts/:draft_id/keyboard/focus
func (h *DraftHandler) Focus(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req focusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.draftService.Focus(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.Coord, req.Selection)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"keyboard": sess.Keyboard})
}

// Blur godoc
// POST /api/v1/drafts/:draft_id/keyboard/blur
func (h *DraftHandler) Blur(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sess, err := h.draftService.Blur(c.Request.Context(), claims.TelegramID, c.Param("draft_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"keyboard": sess.Keyboard})
}

type keyPressRequest struct {
	Key  service.KeyKind `json:"key" binding:"required,oneof=insert backspace clear"`
	Text string          `json:"text"`
}

// KeyPress godoc
// POST /api/v1/drafts/:draft_id/keyboard/press
// Routes one virtual key at the focused field. An unfocused press is a
// no-op and still succeeds.
func (h *DraftHandler) KeyPress(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req keyPressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, edit, err := h.draftService.KeyPress(c.Request.Context(), claims.TelegramID, c.Param("draft_id"), req.Key, req.Text)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": sess, "edit": edit})
}

// Save godoc
// POST /api/v1/drafts/:draft_id/save
// Validates the draft and persists it upstream.
func (h *DraftHandler) Save(c *gin.Context) {
	claims := middleware.GetClaims(c)

	saved, err := h.draftService.Save(c.Request.Context(), claims.TelegramID, c.Param("draft_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": saved})
}
