// Package httputil provides the JSON error envelope and query helpers shared by the
// dev server handlers.
package httputil

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/delta/internal/errors"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// errorMapping ties an error category to its status. exposeDetail copies err.Error()
// into the message; otherwise the fixed message is used.
type errorMapping struct {
	target       error
	status       int
	code         string
	message      string
	exposeDetail bool
}

// errorMappings is checked in order. ErrVersionConflict precedes ErrConflict.
var errorMappings = []errorMapping{
	{target: apperrors.ErrNotFound, status: http.StatusNotFound, code: "not_found",
		message: "The requested resource was not found"},
	{target: apperrors.ErrVersionConflict, status: http.StatusPreconditionFailed, code: "version_conflict",
		exposeDetail: true},
	{target: apperrors.ErrConflict, status: http.StatusConflict, code: "conflict",
		message: "A conflict occurred with existing data"},
	{target: apperrors.ErrInvalidInput, status: http.StatusUnprocessableEntity, code: "invalid_input",
		exposeDetail: true},
	{target: apperrors.ErrUnauthorized, status: http.StatusUnauthorized, code: "unauthorized",
		message: "A valid request signature is required"},
	{target: apperrors.ErrForbidden, status: http.StatusForbidden, code: "forbidden",
		message: "The requestor may not access this resource"},
}

// HandleErrorGin writes the status and envelope for err. Errors outside the known
// categories become a 500 whose details stay in the log.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.target) {
			continue
		}
		status = m.status
		body = ErrorResponse{Error: m.code, Message: m.message}
		if m.exposeDetail {
			body.Message = err.Error()
		}
		break
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}
	writeError(c, status, body)
}

// HandleBadRequestGin writes a 400 for bodies or parameters that could not be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	writeError(c, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandlePreconditionRequiredGin writes a 428 for a conditional update sent without If-Match.
func HandlePreconditionRequiredGin(c *gin.Context, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("precondition required", slog.String("path", c.Request.URL.Path))
	}
	writeError(c, http.StatusPreconditionRequired, ErrorResponse{
		Error:   "precondition_required",
		Message: "If-Match header is required",
	})
}

// HandleTooManyRequestsGin writes a 429 carrying a Retry-After of retryAfter seconds.
func HandleTooManyRequestsGin(c *gin.Context, retryAfter int, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("rate limit exceeded",
			slog.String("path", c.Request.URL.Path),
			slog.Int("retry_after", retryAfter),
		)
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	writeError(c, http.StatusTooManyRequests, ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: "Too many requests, retry after the delay in Retry-After",
	})
}

func writeError(c *gin.Context, status int, body ErrorResponse) {
	body.RequestID = requestid.Get(c)
	c.JSON(status, body)
}
