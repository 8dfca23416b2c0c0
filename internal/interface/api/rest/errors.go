package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-api/internal/domain/apperr"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeStorage    = "STORAGE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

type (
	ErrorBody struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	}
	ErrorResponse struct {
		Error ErrorBody `json:"error"`
	}
)

func abortWith(c *gin.Context, status int, code, msg string, details map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: msg, Details: details},
	})
}

// writeError maps a service error onto the HTTP response. Server-side
// failures are logged under op; client errors are not.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	if ve, ok := apperr.IsValidation(err); ok {
		abortWith(c, http.StatusBadRequest, CodeValidation, "invalid request", ve.Fields)
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		abortWith(c, http.StatusNotFound, CodeNotFound, "resource not found", nil)
		return
	}

	logger.Error(op+" error", zap.Error(err))

	if apperr.IsStorage(err) {
		abortWith(c, http.StatusInternalServerError, CodeStorage, "storage failure", nil)
		return
	}
	abortWith(c, http.StatusInternalServerError, CodeInternal, "internal error", nil)
}
