package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turnero/clinic-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response, mapping the error code to an
// HTTP status. Scheduling failures are recoverable client errors; only
// unknown errors surface as 500.
func RespondWithError(c *gin.Context, err error) {
	var statusCode int
	var message string

	if appErr, ok := err.(*errors.AppError); ok {
		statusCode = statusFor(appErr.Code)
		message = appErr.Message
	} else {
		statusCode = http.StatusInternalServerError
		message = "internal server error"
	}

	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    statusCode,
			Message: message,
		},
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrSchedulingConflict:
		return http.StatusConflict
	case errors.ErrInactiveEntity,
		errors.ErrSpecialtyMismatch,
		errors.ErrOutsideAvailability,
		errors.ErrInvalidTemporalState,
		errors.ErrInvalidChannel,
		errors.ErrInsufficientLeadTime,
		errors.ErrMalformedInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
