// Package handlers implements the HTTP request handlers for the fingerprint
// API.  Handlers decode requests, delegate to application services, and
// translate AppError codes into HTTP responses.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemFP-Engine/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError writes a structured error response, mapping AppError codes to
// HTTP statuses.  Errors without an AppError in their chain are masked as
// internal errors so stray details never reach callers.
func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		c.JSON(appErr.Code.HTTPStatus(), ErrorResponse{
			Code:    appErr.Code.String(),
			Message: appErr.Message,
			Detail:  appErr.Detail,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    errors.ErrCodeInternal.String(),
		Message: "internal server error",
	})
}

// respondBindError reports a request-body decoding failure.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    errors.ErrCodeBadRequest.String(),
		Message: "invalid request body",
		Detail:  err.Error(),
	})
}
