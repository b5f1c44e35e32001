package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/domain"
	"tourdesk/internal/http/middleware"
	"tourdesk/internal/utils"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Backend field
// errors come first: they also wrap the upstream status.
func RespondDomainError(c *gin.Context, err error) {
	var verr domain.ValidationError
	switch {
	case domain.IsFieldErrors(err):
		respondError(c, http.StatusBadRequest, "validation_error", "validation failed", domain.FieldErrorLines(err))
	case errors.As(err, &verr):
		var details any
		if verr.Field != "" {
			details = gin.H{"field": verr.Field}
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUpstream(err):
		utils.LogEventf(middleware.GetRequestID(c), "http", "upstream_error", "%v", err)
		respondError(c, http.StatusBadGateway, "upstream_error", "tour backend request failed", nil)
	default:
		utils.LogEventf(middleware.GetRequestID(c), "http", "internal_error", "%v", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
