package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/answersheet"
	"github.com/titulhq/titul-gateway/internal/draft"
	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// failFromError maps service and upstream errors onto the response
// envelope. Draft validation, ceiling and manual-score errors carry
// their own user-facing message; upstream errors surface the extracted
// message; everything unrecognized becomes an internal error.
func failFromError(c *gin.Context, err error) {
	var (
		ceilErr   *draft.CeilingError
		valErr    *draft.ValidationError
		scoreErr  *answersheet.ScoreError
		expiryErr *service.ExpiryError
		apiErr    *upstream.APIError
	)

	switch {
	case errors.As(err, &ceilErr):
		response.FailWithMessage(c, http.StatusConflict, response.ErrQuestionCeiling, ceilErr.Error())
	case errors.As(err, &valErr):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrDraftInvalid, valErr.Error())
	case errors.As(err, &scoreErr):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrManualScore, scoreErr.Error())
	case errors.As(err, &expiryErr):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrDraftInvalid, expiryErr.Error())
	case errors.Is(err, draft.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, draft.ErrKindMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrActionForbidden)
	case errors.Is(err, service.ErrDraftNotFound), errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionExpired)
	case errors.Is(err, service.ErrNotDraftOwner), errors.Is(err, service.ErrNotAttemptOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrUnknownSubject):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrSubmitNotAllowed):
		response.Fail(c, http.StatusForbidden, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrEmptyBroadcast):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.As(err, &apiErr):
		status := apiErr.Status
		code := response.ErrUpstream
		if status == http.StatusNotFound {
			code = response.ErrTestNotFound
		}
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		response.FailWithMessage(c, status, code, apiErr.Message)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
