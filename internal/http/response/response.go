package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/platform/ctxutil"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type APIError struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

const (
	codeInternal            = "internal_error"
	codeCascadeDeleteFailed = "cascade_delete_failed"
)

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict,
		domainagg.CodeSequenceViolation,
		domainagg.CodePrerequisiteNotMet:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondAggregateError writes the error envelope for any service error.
// Server-side failures get a generic message; the cause is logged only.
func RespondAggregateError(c *gin.Context, log *logger.Logger, err error) {
	var aggErr *domainagg.Error
	if !errors.As(err, &aggErr) {
		if log != nil {
			fields := append([]interface{}{"path", c.FullPath(), "error", err}, ctxutil.LogFields(c.Request.Context())...)
			log.Error("Unclassified request failure", fields...)
		}
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{Error: APIError{Message: "internal server error", Code: codeInternal}})
		return
	}
	status := StatusFor(aggErr.Code)
	body := APIError{
		Message: domainagg.MessageOf(err),
		Code:    string(aggErr.Code),
		Details: aggErr.Details,
	}
	switch aggErr.Code {
	case domainagg.CodeFatal:
		body.Message = "cascade delete failed"
		body.Code = codeCascadeDeleteFailed
		body.Details = nil
	case domainagg.CodeInternal, domainagg.CodeInvariantViolation:
		body.Message = "internal server error"
		body.Code = codeInternal
		body.Details = nil
	case domainagg.CodeRetryable:
		body.Message = "temporarily unavailable, retry"
		body.Details = nil
	}
	if status >= http.StatusInternalServerError && log != nil {
		fields := append([]interface{}{"path", c.FullPath(), "code", aggErr.Code, "op", aggErr.Op, "error", err}, ctxutil.LogFields(c.Request.Context())...)
		log.Error("Request failed", fields...)
	}
	c.JSON(status, ErrorEnvelope{Error: body})
}
